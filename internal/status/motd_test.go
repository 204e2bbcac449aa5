package status

import "testing"

func TestParseMOTD(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		clean string
		html  string
	}{
		{
			name:  "plain",
			raw:   "A Minecraft Server",
			clean: "A Minecraft Server",
			html:  "A Minecraft Server",
		},
		{
			name:  "colour then reset",
			raw:   "§aGreen§r plain",
			clean: "Green plain",
			html:  `<span style="color: #55FF55;">Green</span> plain`,
		},
		{
			name:  "upper case code and bold",
			raw:   "§C§lRed",
			clean: "Red",
			html:  `<span style="color: #FF5555; font-weight: bold;">Red</span>`,
		},
		{
			name:  "colour resets formatting",
			raw:   "§n§oa§7b",
			clean: "ab",
			html:  `<span style="font-style: italic; text-decoration: underline;">a</span><span style="color: #AAAAAA;">b</span>`,
		},
		{
			name:  "obfuscated is hidden in html",
			raw:   "x§kyy§rz",
			clean: "xyyz",
			html:  "xz",
		},
		{
			name:  "unknown code and trailing marker kept",
			raw:   "§zab§",
			clean: "§zab§",
			html:  "§zab§",
		},
		{
			name:  "html escaped",
			raw:   "<b>&",
			clean: "<b>&",
			html:  "&lt;b&gt;&amp;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseMOTD(tt.raw)
			if got.Raw != tt.raw {
				t.Errorf("Raw = %q, want %q", got.Raw, tt.raw)
			}
			if got.Clean != tt.clean {
				t.Errorf("Clean = %q, want %q", got.Clean, tt.clean)
			}
			if got.HTML != tt.html {
				t.Errorf("HTML = %q, want %q", got.HTML, tt.html)
			}
		})
	}
}
