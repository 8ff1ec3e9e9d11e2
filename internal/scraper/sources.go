package scraper

// Source keys accepted by the aggregation facade.
const (
	SourceKyobo = "kyobo"
	SourceYes24 = "yes24"
)

// Scraping targets. Kyobo exposes a spreadsheet export plus three page
// generations; Yes24 has a single listing page.
const (
	kyoboExcelURL = "https://store.kyobobook.co.kr/api/gw/best/downloads/excel?period=002&bsslBksClstCode=A&bestSeller=01"

	kyoboStoreURL      = "https://store.kyobobook.co.kr/bestseller/total/weekly"
	kyoboStoreReferrer = "https://store.kyobobook.co.kr"

	kyoboProductURL      = "https://product.kyobobook.co.kr/bestseller/total?period=001"
	kyoboProductReferrer = "https://product.kyobobook.co.kr"

	kyoboMobileURL      = "https://m.kyobobook.co.kr/bestseller/total?period=001"
	kyoboMobileReferrer = "https://m.kyobobook.co.kr"

	kyoboLegacyURL      = "https://www.kyobobook.co.kr/bestSellerNew/bestseller.laf?orderClick=GJb"
	kyoboLegacyReferrer = "https://www.kyobobook.co.kr"

	yes24BestURL  = "https://www.yes24.com/Product/Category/BestSeller?categoryNumber=001&sumgb=07"
	yes24Referrer = "https://www.yes24.com"
)

// kyoboProductRule covers the current product.kyobobook.co.kr layout, which
// the mobile site shares.
var kyoboProductRule = ItemRule{
	Container: "li.prod_item, .prod_list .prod_item, .prod_list_type .prod_item",
	Title: []fieldSource{
		text(".prod_info .prod_name"),
		text("a.prod_info, .prod_name"),
	},
	Author:     []fieldSource{text(".prod_author")},
	Publisher:  []fieldSource{text(".prod_publish")},
	Cover:      ".prod_thumb_box img, .prod_thumb img, img",
	CoverAttrs: []string{"data-src", "data-original", "src"},
	Link:       []fieldSource{attrOf("a.prod_info, .prod_name a", "href")},
}

// kyoboStoreRule covers the Tailwind-styled store front. Author and
// publisher share one "author · publisher" node, and when no title text
// resolves the cover image's alt attribute still carries it.
var kyoboStoreRule = ItemRule{
	Container: "ol.grid li",
	Title: []fieldSource{
		text("a.prod_link.line-clamp-2, a.prod_link.line-clamp-2.font-medium"),
		text("a.prod_link[href*='/detail/']"),
		attrOf("a.prod_link img[alt]", "alt"),
	},
	Meta:       text("div.line-clamp-2.flex, div.line-clamp-2"),
	Cover:      "a.prod_link img[src]",
	CoverAttrs: []string{"src"},
	Link: []fieldSource{
		attrOf("a.prod_link.line-clamp-2, a.prod_link.line-clamp-2.font-medium", "href"),
		attrOf("a.prod_link[href*='/detail/']", "href"),
	},
}

var kyoboLegacyRule = ItemRule{
	Container: ".list_detail, .detail, li, .book_list li",
	Title: []fieldSource{
		text("a.title, .title a, .detail .title a, .prod_name, .prod_name a"),
	},
	Author:     []fieldSource{text(".author, .detail .author, .info .author")},
	Publisher:  []fieldSource{text(".publisher, .detail .publisher, .info .publisher")},
	Cover:      ".cover img, .book_img img, img",
	CoverAttrs: []string{"data-src", "src"},
	Link:       []fieldSource{attrOf("a.title, .title a, .prod_name a", "href")},
}

var yes24Rule = ItemRule{
	Container: "#yesBestList li, .cCont_list li, .bestSellerList li, .itemUnit",
	Title: []fieldSource{
		text("a.gd_name"),
		text(".gd_name, .goods_name, .goods_name a, .item_tit a"),
	},
	Author:    []fieldSource{text(".info_auth, .auth, .pubGrp .auth")},
	Publisher: []fieldSource{text(".info_pub, .pub, .pubGrp .pub")},
	Cover:     ".gd_img img, .goodsImgW img, .imgBdr img, img",
	Link:      []fieldSource{attrOf("a.gd_name, .gd_name a, .goods_name a, .item_tit a", "href")},
}
