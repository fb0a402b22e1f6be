package translate

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGallery records the call sequence of one engine run.
type fakeGallery struct {
	cards       []Card
	images      map[int]ImageInfo
	position    int
	drawerOpen  bool
	editorOpen  bool
	saves       int
	translated  []int
	goToFails   map[int]bool
	drawerClose int
}

func newFakeGallery(images map[int]ImageInfo) *fakeGallery {
	var cards []Card
	for i := 1; i <= len(images); i++ {
		cards = append(cards, Card{Position: i, Src: images[i].Src})
	}
	return &fakeGallery{cards: cards, images: images, goToFails: map[int]bool{}}
}

func (g *fakeGallery) OpenDrawer(ctx context.Context) error {
	g.drawerOpen = true
	return nil
}

func (g *fakeGallery) Cards(ctx context.Context) ([]Card, error) { return g.cards, nil }

func (g *fakeGallery) OpenEditor(ctx context.Context, position int) error {
	g.editorOpen = true
	g.position = position
	return nil
}

func (g *fakeGallery) Advance(ctx context.Context) error {
	g.position++
	return nil
}

func (g *fakeGallery) GoTo(ctx context.Context, position int) error {
	if g.goToFails[position] {
		return errors.New("navigation lost")
	}
	g.position = position
	return nil
}

func (g *fakeGallery) CurrentImage(ctx context.Context, position int) (ImageInfo, error) {
	img, ok := g.images[position]
	if !ok {
		return ImageInfo{}, errors.New("no such image")
	}
	return img, nil
}

func (g *fakeGallery) TriggerTranslate(ctx context.Context) error {
	g.translated = append(g.translated, g.position)
	return nil
}

func (g *fakeGallery) Save(ctx context.Context) error {
	g.saves++
	return nil
}

func (g *fakeGallery) CloseEditor(ctx context.Context) error {
	g.editorOpen = false
	return nil
}

func (g *fakeGallery) CloseDrawer(ctx context.Context) error {
	g.drawerOpen = false
	g.drawerClose++
	return nil
}

func chineseImage(pos int) ImageInfo {
	return ImageInfo{Position: pos, Src: "https://cbu01.alicdn.com/img/p.jpg", Alt: "连衣裙", Width: 800, Height: 800}
}

func plainImage(pos int) ImageInfo {
	return ImageInfo{Position: pos, Src: "https://cbu01.alicdn.com/img/p.jpg", Alt: "dress", Width: 800, Height: 800}
}

func TestEngineRun_AutoDetect(t *testing.T) {
	gallery := newFakeGallery(map[int]ImageInfo{
		1: chineseImage(1),
		2: plainImage(2),
		3: chineseImage(3),
		4: plainImage(4),
	})
	engine := NewEngine(gallery, AttributeDetector{}, logrus.New())

	report, err := engine.Run(context.Background(), "auto_detect_chinese")

	require.NoError(t, err)
	assert.Equal(t, 4, report.Scanned)
	assert.Equal(t, []int{1, 3}, report.Candidates)
	assert.Equal(t, []int{1, 3}, report.Translated)
	assert.Equal(t, []int{1, 3}, gallery.translated)
	assert.True(t, report.Saved)
	assert.Equal(t, 1, gallery.saves)
	assert.False(t, gallery.drawerOpen)
	assert.False(t, gallery.editorOpen)
}

func TestEngineRun_TranslatedSubsetOfCandidates(t *testing.T) {
	gallery := newFakeGallery(map[int]ImageInfo{
		1: chineseImage(1),
		2: chineseImage(2),
		3: chineseImage(3),
	})
	gallery.goToFails[2] = true
	engine := NewEngine(gallery, AttributeDetector{}, logrus.New())

	report, err := engine.Run(context.Background(), "specific:all")

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, report.Candidates)
	// Navigation failure at 2 abandons the remaining candidates.
	assert.Equal(t, []int{1}, report.Translated)
	assert.Subset(t, report.Candidates, report.Translated)
	assert.True(t, report.Saved)
}

func TestEngineRun_EmptyGallery(t *testing.T) {
	gallery := newFakeGallery(map[int]ImageInfo{})
	engine := NewEngine(gallery, AttributeDetector{}, logrus.New())

	report, err := engine.Run(context.Background(), "auto_detect_chinese")

	require.NoError(t, err)
	assert.Zero(t, report.Scanned)
	assert.Empty(t, report.Translated)
	assert.False(t, report.Saved)
	assert.Zero(t, gallery.saves)
	assert.Equal(t, 1, gallery.drawerClose)
}

func TestEngineRun_NoChineseNoSave(t *testing.T) {
	gallery := newFakeGallery(map[int]ImageInfo{
		1: plainImage(1),
		2: plainImage(2),
	})
	engine := NewEngine(gallery, AttributeDetector{}, logrus.New())

	report, err := engine.Run(context.Background(), "auto_detect_chinese")

	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Empty(t, report.Candidates)
	assert.False(t, report.Saved)
	assert.Zero(t, gallery.saves)
}

func TestEngineRun_SpecificPositions(t *testing.T) {
	gallery := newFakeGallery(map[int]ImageInfo{
		1: chineseImage(1),
		2: chineseImage(2),
		3: plainImage(3),
	})
	engine := NewEngine(gallery, AttributeDetector{}, logrus.New())

	report, err := engine.Run(context.Background(), "2,3")

	require.NoError(t, err)
	assert.Equal(t, []int{2}, report.Candidates)
	assert.Equal(t, []int{2}, report.Translated)
	assert.True(t, report.Saved)
	assert.Equal(t, 1, gallery.saves)
}

func TestEngineRun_BadActionValue(t *testing.T) {
	gallery := newFakeGallery(map[int]ImageInfo{1: chineseImage(1)})
	engine := NewEngine(gallery, AttributeDetector{}, logrus.New())

	_, err := engine.Run(context.Background(), "nonsense:value")

	assert.Error(t, err)
	assert.False(t, gallery.drawerOpen)
}

func TestFilterCards(t *testing.T) {
	cards := []Card{
		{Src: "https://cbu01.alicdn.com/img/a.jpg"},
		{Src: "https://cbu01.alicdn.com/img/a.jpg"}, // virtualization shadow copy
		{Src: "https://cdn.percenty.co.kr/banner.png"},
		{Src: "https://cbu01.alicdn.com/img/c.jpg"},
	}

	filtered := FilterCards(cards, "https://cbu01.alicdn.com/img")

	require.Len(t, filtered, 2)
	assert.Equal(t, "https://cbu01.alicdn.com/img/a.jpg", filtered[0].Src)
	assert.Equal(t, 1, filtered[0].Position)
	assert.Equal(t, "https://cbu01.alicdn.com/img/c.jpg", filtered[1].Src)
	assert.Equal(t, 2, filtered[1].Position)
}
