package tourapi

// TourAPI encodes nearly every item field as a string, including numeric
// ones like coordinates, so the records below follow the wire.

// AreaCode is one administrative area entry from areaCode2.
type AreaCode struct {
	Rnum int    `json:"rnum"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// TourItem is one listing entry from areaBasedList2 or searchKeyword2.
type TourItem struct {
	ContentID     string `json:"contentid"`
	ContentTypeID string `json:"contenttypeid"`
	Title         string `json:"title"`
	Addr1         string `json:"addr1"`
	Addr2         string `json:"addr2"`
	AreaCode      string `json:"areacode"`
	SigunguCode   string `json:"sigungucode"`
	Cat1          string `json:"cat1"`
	Cat2          string `json:"cat2"`
	Cat3          string `json:"cat3"`
	FirstImage    string `json:"firstimage"`
	FirstImage2   string `json:"firstimage2"`
	MapX          string `json:"mapx"`
	MapY          string `json:"mapy"`
	Tel           string `json:"tel"`
	ZipCode       string `json:"zipcode"`
	CreatedTime   string `json:"createdtime"`
	ModifiedTime  string `json:"modifiedtime"`
}

// TourDetail is the common detail record from detailCommon2.
type TourDetail struct {
	ContentID     string `json:"contentid"`
	ContentTypeID string `json:"contenttypeid"`
	Title         string `json:"title"`
	Overview      string `json:"overview"`
	Homepage      string `json:"homepage"`
	Addr1         string `json:"addr1"`
	Addr2         string `json:"addr2"`
	AreaCode      string `json:"areacode"`
	FirstImage    string `json:"firstimage"`
	FirstImage2   string `json:"firstimage2"`
	MapX          string `json:"mapx"`
	MapY          string `json:"mapy"`
	Tel           string `json:"tel"`
	ZipCode       string `json:"zipcode"`
}

// TourIntro carries the type-specific intro fields from detailIntro2. The
// upstream varies the field set by content type; only the fields the site
// renders are kept.
type TourIntro struct {
	ContentID     string `json:"contentid"`
	ContentTypeID string `json:"contenttypeid"`
	InfoCenter    string `json:"infocenter"`
	Parking       string `json:"parking"`
	RestDate      string `json:"restdate"`
	UseTime       string `json:"usetime"`
	OpenTime      string `json:"opentimefood"`
	FirstMenu     string `json:"firstmenu"`
	UseFee        string `json:"usefee"`
	CheckInTime   string `json:"checkintime"`
	CheckOutTime  string `json:"checkouttime"`
}

// TourImage is one gallery entry from detailImage2.
type TourImage struct {
	ContentID     string `json:"contentid"`
	ImgName       string `json:"imgname"`
	OriginImgURL  string `json:"originimgurl"`
	SmallImageURL string `json:"smallimageurl"`
	SerialNum     string `json:"serialnum"`
}

// PetTourInfo is the pet-accompaniment record from detailPetTour2.
type PetTourInfo struct {
	ContentID        string `json:"contentid"`
	AcmpyTypeCd      string `json:"acmpyTypeCd"`
	AcmpyPsblCpam    string `json:"acmpyPsblCpam"`
	AcmpyNeedMtr     string `json:"acmpyNeedMtr"`
	EtcAcmpyInfo     string `json:"etcAcmpyInfo"`
	RelaAcdntRiskMtr string `json:"relaAcdntRiskMtr"`
	RelaPosesFclty   string `json:"relaPosesFclty"`
	RelaFrnshPrdlst  string `json:"relaFrnshPrdlst"`
	RelaPurcPrdlst   string `json:"relaPurcPrdlst"`
	RelaRntlPrdlst   string `json:"relaRntlPrdlst"`
}
