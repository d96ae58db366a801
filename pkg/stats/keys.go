package stats

// Key is one aggregation target: an upstream code plus its display name.
type Key struct {
	Code string
	Name string
}

// Regions are the KTO administrative area codes.
var Regions = []Key{
	{Code: "1", Name: "Seoul"},
	{Code: "2", Name: "Incheon"},
	{Code: "3", Name: "Daejeon"},
	{Code: "4", Name: "Daegu"},
	{Code: "5", Name: "Gwangju"},
	{Code: "6", Name: "Busan"},
	{Code: "7", Name: "Ulsan"},
	{Code: "8", Name: "Sejong"},
	{Code: "31", Name: "Gyeonggi"},
	{Code: "32", Name: "Gangwon"},
	{Code: "33", Name: "Chungbuk"},
	{Code: "34", Name: "Chungnam"},
	{Code: "35", Name: "Gyeongbuk"},
	{Code: "36", Name: "Gyeongnam"},
	{Code: "37", Name: "Jeonbuk"},
	{Code: "38", Name: "Jeonnam"},
	{Code: "39", Name: "Jeju"},
}

// Categories are the TourAPI content type codes.
var Categories = []Key{
	{Code: "12", Name: "Tourist Spot"},
	{Code: "14", Name: "Cultural Facility"},
	{Code: "15", Name: "Festival/Event"},
	{Code: "25", Name: "Travel Course"},
	{Code: "28", Name: "Leisure Sports"},
	{Code: "32", Name: "Accommodation"},
	{Code: "38", Name: "Shopping"},
	{Code: "39", Name: "Restaurant"},
}
