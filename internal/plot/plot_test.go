package plot

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/matsen/citegraph/internal/citestats"
	"github.com/matsen/citegraph/internal/work"
)

func sampleTable(opts citestats.Options) *citestats.Table {
	works := []work.Work{
		{ID: "W1", PublicationYear: 2010},
		{ID: "W2", PublicationYear: 2012},
	}
	cites := []work.Work{
		{ID: "C1", PublicationYear: 2015, ReferencedWorks: []string{"W1", "W2"}},
		{ID: "C2", PublicationYear: 2016, ReferencedWorks: []string{"W1"}},
		{ID: "C3", PublicationYear: 2016, ReferencedWorks: []string{"W1"}},
		{ID: "C4", PublicationYear: 2017, ReferencedWorks: []string{"W1"}},
	}
	return citestats.Count(works, cites, opts)
}

func isWhite(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}

func TestRender_Bars(t *testing.T) {
	tbl := sampleTable(citestats.Options{})
	opts := Options{Width: 400, Height: 300}

	img, err := Render(tbl, opts)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, 400, 300) {
		t.Errorf("Bounds() = %v, want 400x300", got)
	}

	// 2010 has 4 citations (the maximum), 2012 has 1.
	l := newLayout(tbl, opts.withDefaults())
	yMax, _ := yScale(tbl.MaxYearTotal())
	slot := l.width / 2
	bottom := l.top + l.height
	tallest := bottom - 4/float64(yMax)*l.height

	inFirst := img.At(int(l.left+slot/2), int(bottom-2))
	if isWhite(inFirst) {
		t.Error("first bar not drawn at its base")
	}
	if c := img.At(int(l.left+slot/2), int(tallest+2)); isWhite(c) {
		t.Error("first bar should reach its full height")
	}
	if c := img.At(int(l.left+slot*1.5), int(tallest+2)); !isWhite(c) {
		t.Error("second bar should be shorter than the first")
	}
}

func TestRender_StackedSeriesColors(t *testing.T) {
	tbl := sampleTable(citestats.Options{Color: citestats.ColorWorks, NColors: 2})
	opts := Options{Width: 400, Height: 300}

	img, err := Render(tbl, opts)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	// 2012 holds only W2, which falls into Other.
	l := newLayout(tbl, opts.withDefaults())
	slot := l.width / 2
	got := color.NRGBAModel.Convert(img.At(int(l.left+slot*1.5), int(l.top+l.height-2))).(color.NRGBA)
	if got != otherColor {
		t.Errorf("Other bar color = %v, want %v", got, otherColor)
	}
	first := color.NRGBAModel.Convert(img.At(int(l.left+slot/2), int(l.top+l.height-2))).(color.NRGBA)
	if first != palette[0] {
		t.Errorf("W1 bar color = %v, want %v", first, palette[0])
	}
}

func TestRender_Empty(t *testing.T) {
	tbl := citestats.Count(nil, nil, citestats.Options{})
	img, err := Render(tbl, Options{Legend: true})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := img.Bounds().Dx(); got != DefaultWidth {
		t.Errorf("width = %d, want %d", got, DefaultWidth)
	}
}

func TestLayout_LegendNarrowsPlot(t *testing.T) {
	colored := sampleTable(citestats.Options{Color: citestats.ColorCites, NColors: 3})
	plain := sampleTable(citestats.Options{})

	opts := Options{Legend: true}.withDefaults()
	if newLayout(colored, opts).width >= newLayout(plain, opts).width {
		t.Error("legend should take space from the plot area")
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plot.png")
	tbl := sampleTable(citestats.Options{Color: citestats.ColorCites, NColors: 3})

	if err := SavePNG(path, tbl, Options{Width: 320, Height: 240, Legend: true, Title: "Citations"}); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if got := img.Bounds(); got != image.Rect(0, 0, 320, 240) {
		t.Errorf("Bounds() = %v, want 320x240", got)
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePNG(&buf, sampleTable(citestats.Options{}), Options{}); err != nil {
		t.Fatalf("WritePNG() error = %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Errorf("png.Decode() error = %v", err)
	}
}

func TestFontErrors(t *testing.T) {
	tbl := sampleTable(citestats.Options{})

	if _, err := Render(tbl, Options{FontPath: filepath.Join(t.TempDir(), "missing.ttf")}); err == nil {
		t.Error("Render() expected error for missing font")
	}

	bad := filepath.Join(t.TempDir(), "bad.ttf")
	if err := os.WriteFile(bad, []byte("not a font"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Render(tbl, Options{FontPath: bad}); err == nil {
		t.Error("Render() expected error for invalid font")
	}
}

func TestYScale(t *testing.T) {
	tests := []struct {
		top      int
		wantMax  int
		wantStep int
	}{
		{0, 1, 1},
		{3, 3, 1},
		{7, 8, 2},
		{23, 25, 5},
		{87, 100, 20},
		{480, 500, 100},
	}
	for _, tt := range tests {
		yMax, step := yScale(tt.top)
		if yMax != tt.wantMax || step != tt.wantStep {
			t.Errorf("yScale(%d) = %d, %d; want %d, %d", tt.top, yMax, step, tt.wantMax, tt.wantStep)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("https://openalex.org/W1234567890", 10); got != "https:/..." {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("W1", 10); got != "W1" {
		t.Errorf("truncate() = %q", got)
	}
}
