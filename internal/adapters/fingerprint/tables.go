package fingerprint

// KeywordRule maps a device-name substring to a vendor.
type KeywordRule struct {
	Keyword string
	Vendor  string
}

// Tables holds the lookup data used by VendorIdentifier.
type Tables struct {
	// OUI maps "XX:XX:XX" prefixes (any separator, any case) to vendors.
	OUI map[string]string
	// Keywords are checked in order against the lowercased device name.
	Keywords []KeywordRule
	// Aliases map lowercased vendor spellings to canonical names.
	Aliases map[string]string
}

// DefaultTables returns the built-in lookup data. Each call returns fresh
// copies so callers may extend them.
func DefaultTables() Tables {
	oui := map[string]string{
		"18:B4:30": "yeelight",
		"04:CF:8C": "xiaomi",
		"28:6C:07": "xiaomi",
		"64:09:80": "xiaomi",
		"78:11:DC": "xiaomi",
		"50:C7:BF": "tplink",
		"B0:4E:26": "tplink",
		"98:DA:C4": "tplink",
		"C0:56:E3": "hikvision",
		"44:19:B6": "hikvision",
		"3C:EF:8C": "dahua",
		"90:02:A9": "dahua",
		"00:17:88": "philips",
		"EC:B5:FA": "philips",
		"F4:F5:D8": "google",
		"54:60:09": "google",
		"1C:7E:E5": "dlink",
		"C8:D3:A3": "dlink",
		"A0:40:A0": "netgear",
		"E0:46:9A": "netgear",
		"B8:27:EB": "raspberry pi",
		"DC:A6:32": "raspberry pi",
		"24:0A:C4": "espressif",
		"EC:FA:BC": "espressif",
	}

	keywords := []KeywordRule{
		{Keyword: "yeelight", Vendor: "yeelight"},
		{Keyword: "xiaomi", Vendor: "xiaomi"},
		{Keyword: "mijia", Vendor: "xiaomi"},
		{Keyword: "tp-link", Vendor: "tplink"},
		{Keyword: "tplink", Vendor: "tplink"},
		{Keyword: "hikvision", Vendor: "hikvision"},
		{Keyword: "dahua", Vendor: "dahua"},
		{Keyword: "d-link", Vendor: "dlink"},
		{Keyword: "dlink", Vendor: "dlink"},
		{Keyword: "netgear", Vendor: "netgear"},
		{Keyword: "philips hue", Vendor: "philips"},
		{Keyword: "chromecast", Vendor: "google"},
		{Keyword: "google home", Vendor: "google"},
		{Keyword: "sonos", Vendor: "sonos"},
		{Keyword: "raspberrypi", Vendor: "raspberry pi"},
		{Keyword: "esp32", Vendor: "espressif"},
		{Keyword: "esp8266", Vendor: "espressif"},
	}

	aliases := map[string]string{
		"yeelink":                                "yeelight",
		"qingdao yeelink information technology": "yeelight",
		"tp-link":                                "tplink",
		"tp-link technologies":                   "tplink",
		"hangzhou hikvision digital technology":  "hikvision",
		"zhejiang dahua technology":              "dahua",
		"d-link":                                 "dlink",
		"d-link international":                   "dlink",
		"huawei technologies":                    "huawei",
		"xiaomi communications":                  "xiaomi",
		"beijing xiaomi mobile software":         "xiaomi",
		"philips lighting bv":                    "philips",
		"signify netherlands b.v.":               "philips",
		"google":                                 "google",
		"espressif":                              "espressif",
	}

	return Tables{OUI: oui, Keywords: keywords, Aliases: aliases}
}
