package layout

import (
	"image"
	"math"
	"testing"

	"github.com/matzehuels/promocanvas/pkg/catalog"
)

func resolved(id string, w, h int) *catalog.ResolvedImage {
	return &catalog.ResolvedImage{ID: id, Image: image.NewNRGBA(image.Rect(0, 0, w, h))}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestComputeEmpty(t *testing.T) {
	if got := Compute(nil, nil, DefaultCanvas()); len(got) != 0 {
		t.Errorf("Compute(nil) = %v, want empty", got)
	}
}

func TestComputeExampleScenario(t *testing.T) {
	images := []*catalog.ResolvedImage{resolved("A1", 500, 500), resolved("A2", 500, 500)}
	got := Compute(images, []float64{0.25, 0.25}, DefaultCanvas())

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for i, p := range got {
		if p.Width != 158 || p.Rect().Dx() != 158 {
			t.Errorf("placement %d width = %v (rect %d), want 158", i, p.Width, p.Rect().Dx())
		}
		if p.Y < 30 || p.Bottom() > 270 {
			t.Errorf("placement %d outside band: y=%v bottom=%v", i, p.Y, p.Bottom())
		}
	}
	left := got[0].X
	right := 634 - got[1].Right()
	if !near(left, right) {
		t.Errorf("margins %v and %v not symmetric", left, right)
	}
	if !near(got[1].X-got[0].Right(), 63.4) {
		t.Errorf("spacing = %v, want 63.4", got[1].X-got[0].Right())
	}
}

func TestComputeSingleCentered(t *testing.T) {
	got := Compute([]*catalog.ResolvedImage{resolved("A", 400, 300)}, []float64{0.4}, DefaultCanvas())
	p := got[0]
	if !near(p.CenterX(), 317) {
		t.Errorf("centre x = %v, want 317", p.CenterX())
	}
	if p.Width != 253 {
		t.Errorf("width = %v, want floor(0.4*634)=253", p.Width)
	}
	if !near(p.Y+p.Height/2, 150) {
		t.Errorf("not vertically centred: y=%v h=%v", p.Y, p.Height)
	}
}

func TestComputeThreeEqualGaps(t *testing.T) {
	images := []*catalog.ResolvedImage{
		resolved("A", 300, 200),
		resolved("B", 200, 300),
		resolved("C", 500, 500),
	}
	got := Compute(images, []float64{0.2, 0.15, 0.3}, DefaultCanvas())

	gaps := []float64{
		got[0].X,
		got[1].X - got[0].Right(),
		got[2].X - got[1].Right(),
		634 - got[2].Right(),
	}
	for i := 1; i < len(gaps); i++ {
		if !near(gaps[i], gaps[0]) {
			t.Errorf("gaps not equal: %v", gaps)
			break
		}
	}
}

func TestComputeHeightCap(t *testing.T) {
	// Tall image: 0.5*634 = 317 wide would need 951px of height.
	got := Compute([]*catalog.ResolvedImage{resolved("T", 100, 300)}, []float64{0.5}, DefaultCanvas())
	p := got[0]
	if !near(p.Height, 240) {
		t.Errorf("height = %v, want band height 240", p.Height)
	}
	if !near(p.Width, 80) {
		t.Errorf("width = %v, want 80", p.Width)
	}
	if !near(p.Y, 30) {
		t.Errorf("y = %v, want 30", p.Y)
	}
	if !near(p.CenterX(), 317) {
		t.Errorf("centre x = %v, want 317", p.CenterX())
	}
}

func TestComputeInvariants(t *testing.T) {
	sizes := [][2]int{{500, 500}, {1200, 400}, {300, 900}}
	fractions := [][]float64{
		{0.1, 0.1, 0.1},
		{0.25, 0.3, 0.2},
		{0.6, 0.6, 0.6},
		{0.33, 0.33, 0.33},
	}
	canvases := []Canvas{DefaultCanvas(), {Width: 1200, Height: 628}, {Width: 300, Height: 600}}

	for _, canvas := range canvases {
		for _, fr := range fractions {
			for n := 1; n <= 3; n++ {
				images := make([]*catalog.ResolvedImage, n)
				for i := range images {
					images[i] = resolved("X", sizes[i][0], sizes[i][1])
				}
				got := Compute(images, fr[:n], canvas)
				if len(got) != n {
					t.Fatalf("len = %d, want %d", len(got), n)
				}
				for i, p := range got {
					srcRatio := float64(sizes[i][0]) / float64(sizes[i][1])
					if math.Abs(p.Width/p.Height-srcRatio) > 0.01 {
						t.Errorf("n=%d slot %d aspect %v, want %v", n, i, p.Width/p.Height, srcRatio)
					}
					if p.Y < canvas.BandTop()-1e-9 || p.Bottom() > canvas.BandTop()+canvas.BandHeight()+1e-9 {
						t.Errorf("n=%d slot %d leaves the band", n, i)
					}
					if p.Slot != i {
						t.Errorf("slot = %d, want %d", p.Slot, i)
					}
				}
			}
		}
	}
}

func TestComputeDefaultsAndExtras(t *testing.T) {
	images := []*catalog.ResolvedImage{
		resolved("A", 100, 100),
		resolved("B", 100, 100),
		resolved("C", 100, 100),
		resolved("D", 100, 100),
	}
	got := Compute(images, []float64{0.2}, DefaultCanvas())
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3 (extras ignored)", len(got))
	}
	if got[1].Width != math.Floor(DefaultFraction*634) {
		t.Errorf("missing fraction width = %v, want %v", got[1].Width, math.Floor(DefaultFraction*634))
	}
}

func TestComputeDeterministic(t *testing.T) {
	images := []*catalog.ResolvedImage{resolved("A", 640, 480), resolved("B", 480, 640)}
	a := Compute(images, []float64{0.3, 0.2}, DefaultCanvas())
	b := Compute(images, []float64{0.3, 0.2}, DefaultCanvas())
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("placement %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
