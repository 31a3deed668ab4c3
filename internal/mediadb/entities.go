package mediadb

import "fmt"

// Manufacturer is a media vendor, unique by name within one cache.
type Manufacturer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (m Manufacturer) String() string { return m.Name }

// Series is a product line of one manufacturer.
type Series struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (s Series) String() string { return s.Name }

// ImageEntity is one gobo, effect glass or effect disc swatch.
type ImageEntity struct {
	DCID  string `json:"dcid"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Image []byte `json:"-"`
}

func (e ImageEntity) String() string {
	return fmt.Sprintf("%s %s", e.Code, e.Name)
}

// Gel is one color filter. ARGB always carries a full alpha channel.
type Gel struct {
	DCID string `json:"dcid"`
	Code string `json:"code"`
	Name string `json:"name"`
	ARGB uint32 `json:"argb"`
}

func packARGB(red, green, blue uint8) uint32 {
	return 0xFF<<24 | uint32(red)<<16 | uint32(green)<<8 | uint32(blue)
}

func (g Gel) Red() uint8   { return uint8(g.ARGB >> 16) }
func (g Gel) Green() uint8 { return uint8(g.ARGB >> 8) }
func (g Gel) Blue() uint8  { return uint8(g.ARGB) }

// Hex renders the color as #RRGGBB.
func (g Gel) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", g.Red(), g.Green(), g.Blue())
}

func (g Gel) String() string {
	return fmt.Sprintf("%s %s (%s)", g.Code, g.Name, g.Hex())
}

// GelMatch is a gel found by color together with where it lives.
type GelMatch struct {
	Gel          Gel          `json:"gel"`
	Manufacturer Manufacturer `json:"manufacturer"`
	Series       Series       `json:"series"`
}
