// Package theme holds the two fixed palettes of the list screen. Every
// surface picks its colors from one boolean: dark or not.
package theme

type Palette struct {
	Background string
	Text       string
	Card       string
	Input      string
	Button     string
	Empty      string
	Muted      string
	Error      string
}

var (
	Light = Palette{
		Background: "#dddddd",
		Text:       "#000000",
		Card:       "#eeeeee",
		Input:      "#eeeeee",
		Button:     "#eeeeee",
		Empty:      "#eeeeee",
		Muted:      "#777777",
		Error:      "#c62828",
	}
	Dark = Palette{
		Background: "#121212",
		Text:       "#ffffff",
		Card:       "#2a2a2a",
		Input:      "#242424",
		Button:     "#242424",
		Empty:      "#181818",
		Muted:      "#8a8a8a",
		Error:      "#ef5350",
	}
)

// For returns the palette for the given mode.
func For(dark bool) Palette {
	if dark {
		return Dark
	}
	return Light
}
