package theme

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/ini.v1"
)

// Detect loads the palette from the first terminal config that
// resolves, falling back to the default amber-on-dark scheme.
// Environment overrides apply on top of whatever was detected.
func Detect() Palette {
	home, err := os.UserHomeDir()
	if err != nil {
		return applyEnvOverrides(DefaultPalette())
	}

	if p, ok := detectAlacritty(home); ok {
		return applyEnvOverrides(p)
	}
	if p, ok := detectFoot(home); ok {
		return applyEnvOverrides(p)
	}

	return applyEnvOverrides(DefaultPalette())
}

// alacrittyConfig covers the relevant parts of alacritty.toml.
type alacrittyConfig struct {
	Colors struct {
		Primary struct {
			Background string `toml:"background"`
			Foreground string `toml:"foreground"`
		} `toml:"primary"`
		Selection struct {
			Background string `toml:"background"`
		} `toml:"selection"`
	} `toml:"colors"`
}

func detectAlacritty(home string) (Palette, bool) {
	paths := []string{
		filepath.Join(home, ".config", "alacritty", "alacritty.toml"),
		filepath.Join(home, ".alacritty.toml"),
	}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var cfg alacrittyConfig
		if err := toml.Unmarshal(data, &cfg); err != nil {
			continue
		}
		if cfg.Colors.Primary.Background == "" || cfg.Colors.Primary.Foreground == "" {
			continue
		}

		p := DefaultPalette()
		p.BG = normalizeHex(cfg.Colors.Primary.Background)
		p.FG = normalizeHex(cfg.Colors.Primary.Foreground)
		p.Muted = dimColor(p.FG, 0.5)

		if cfg.Colors.Selection.Background != "" {
			p.AccentBg = normalizeHex(cfg.Colors.Selection.Background)
		} else {
			p.AccentBg = mixColors(p.BG, p.FG, 0.15)
		}
		return p, true
	}
	return Palette{}, false
}

func detectFoot(home string) (Palette, bool) {
	cfg, err := ini.Load(filepath.Join(home, ".config", "foot", "foot.ini"))
	if err != nil {
		return Palette{}, false
	}

	colors := cfg.Section("colors")
	bg := colors.Key("background").String()
	fg := colors.Key("foreground").String()
	if bg == "" || fg == "" {
		return Palette{}, false
	}

	p := DefaultPalette()
	p.BG = normalizeHex(bg)
	p.FG = normalizeHex(fg)
	p.Muted = dimColor(p.FG, 0.5)

	if sel := colors.Key("selection-background").String(); sel != "" {
		p.AccentBg = normalizeHex(sel)
	} else {
		p.AccentBg = mixColors(p.BG, p.FG, 0.15)
	}
	return p, true
}

// applyEnvOverrides applies RARBG_CLI_* environment variables.
func applyEnvOverrides(p Palette) Palette {
	if v := os.Getenv("RARBG_CLI_BG"); v != "" {
		p.BG = normalizeHex(v)
	}
	if v := os.Getenv("RARBG_CLI_FG"); v != "" {
		p.FG = normalizeHex(v)
	}
	if v := os.Getenv("RARBG_CLI_MUTED"); v != "" {
		p.Muted = normalizeHex(v)
	}
	return p
}

var (
	hexRe      = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	shortHexRe = regexp.MustCompile(`^#[0-9a-fA-F]{3}$`)
)

// normalizeHex ensures a color is in #RRGGBB form.
func normalizeHex(color string) string {
	color = strings.TrimSpace(color)

	if strings.HasPrefix(color, "0x") || strings.HasPrefix(color, "0X") {
		color = "#" + color[2:]
	}
	if !strings.HasPrefix(color, "#") {
		color = "#" + color
	}

	if hexRe.MatchString(color) {
		return color
	}
	if shortHexRe.MatchString(color) {
		r, g, b := color[1:2], color[2:3], color[3:4]
		return "#" + r + r + g + g + b + b
	}
	return color
}

// dimColor reduces the brightness of a hex color.
func dimColor(hex string, factor float64) string {
	hex = normalizeHex(hex)
	if len(hex) != 7 {
		return hex
	}

	r := byte(float64(hexToByte(hex[1:3])) * factor)
	g := byte(float64(hexToByte(hex[3:5])) * factor)
	b := byte(float64(hexToByte(hex[5:7])) * factor)

	return "#" + byteToHex(r) + byteToHex(g) + byteToHex(b)
}

// mixColors blends two colors together.
func mixColors(hex1, hex2 string, t float64) string {
	hex1, hex2 = normalizeHex(hex1), normalizeHex(hex2)
	if len(hex1) != 7 || len(hex2) != 7 {
		return hex1
	}

	r1, g1, b1 := hexToByte(hex1[1:3]), hexToByte(hex1[3:5]), hexToByte(hex1[5:7])
	r2, g2, b2 := hexToByte(hex2[1:3]), hexToByte(hex2[3:5]), hexToByte(hex2[5:7])

	r := byte(float64(r1)*(1-t) + float64(r2)*t)
	g := byte(float64(g1)*(1-t) + float64(g2)*t)
	b := byte(float64(b1)*(1-t) + float64(b2)*t)

	return "#" + byteToHex(r) + byteToHex(g) + byteToHex(b)
}

func hexToByte(s string) byte {
	var v byte
	for _, c := range strings.ToLower(s) {
		v *= 16
		if c >= '0' && c <= '9' {
			v += byte(c - '0')
		} else if c >= 'a' && c <= 'f' {
			v += byte(c - 'a' + 10)
		}
	}
	return v
}

func byteToHex(b byte) string {
	const hex = "0123456789abcdef"
	return string([]byte{hex[b>>4], hex[b&0x0f]})
}
