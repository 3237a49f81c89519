// sharecard.go — Square share card: cropped cover, title, author and an
// optional QR code on white.
package pipeline

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/skip2/go-qrcode"

	"github.com/xob0t/covercraft/pkg/crop"
	"github.com/xob0t/covercraft/pkg/fonts"
	"github.com/xob0t/covercraft/pkg/paint"
	"github.com/xob0t/covercraft/pkg/template"
	"github.com/xob0t/covercraft/pkg/text"
)

// Share card geometry.
const (
	CardSize     = 1080
	cardMargin   = 90
	cardImageW   = 900
	cardImageH   = 700
	cardQRSize   = 150
	cardQRAt     = 840
	cardTextGap  = 40
	cardLineGap  = 20
	cardTitlePx  = 48
	cardAuthorPx = 32
)

var (
	cardTitleColor  = paint.ParseColor("#333333")
	cardAuthorColor = paint.ParseColor("#999999")
)

// ShareCardOptions controls ShareCard.
type ShareCardOptions struct {
	Title  string
	Author string // rendered as "公众号：<author>"
	QRURL  string // when set, a QR code takes the bottom-right corner
	Fonts  *fonts.Resolver
}

// ShareCard renders a CardSize×CardSize card from the base canvas.
func ShareCard(base image.Image, opts ShareCardOptions) (*image.RGBA, error) {
	if opts.Fonts == nil {
		opts.Fonts = fonts.NewResolver(nil, fonts.EmbeddedSource{})
	}
	card := paint.NewCanvas(CardSize, CardSize, color.White)

	cover, err := crop.Crop(base, cardImageW, cardImageH, crop.Smart)
	if err != nil {
		return nil, err
	}
	card = imagingPaste(card, cover, image.Pt(cardMargin, cardMargin))

	textW := cardImageW
	at := image.Pt(CardSize/2, cardMargin+cardImageH+cardTextGap)
	anchor, align := "top", text.AlignCenter
	if opts.QRURL != "" {
		q, err := qrcode.New(opts.QRURL, qrcode.Medium)
		if err != nil {
			return nil, err
		}
		q.DisableBorder = true
		card = imagingPaste(card, q.Image(cardQRSize), image.Pt(cardQRAt, cardQRAt))
		textW = cardQRAt - cardMargin - cardMargin/3
		at.X = cardMargin
		anchor, align = "top-left", text.AlignLeft
	}

	y := at.Y
	if opts.Title != "" {
		f := opts.Fonts.Resolve(template.DefaultFamily, cardTitlePx, "bold")
		face := f.Face()
		b := text.Layout(opts.Title, face, cardTitlePx, image.Pt(at.X, y), anchor, text.Options{
			Wrap: true, MaxWidth: textW, MaxLines: 2, LineHeight: 1.3, Align: align,
		})
		text.Render(card, face, b, text.Style{Color: cardTitleColor})
		y = b.Origin.Y + b.Height + cardLineGap
	}
	if opts.Author != "" {
		f := opts.Fonts.Resolve(template.DefaultFamily, cardAuthorPx, "normal")
		face := f.Face()
		b := text.Layout("公众号："+opts.Author, face, cardAuthorPx, image.Pt(at.X, y), anchor, text.Options{
			Wrap: true, MaxWidth: textW, MaxLines: 1, LineHeight: 1.3, Align: align,
		})
		text.Render(card, face, b, text.Style{Color: cardAuthorColor})
	}
	return card, nil
}

// imagingPaste pastes src onto dst at pt and returns the result as RGBA.
func imagingPaste(dst *image.RGBA, src image.Image, pt image.Point) *image.RGBA {
	return paint.Clone(imaging.Paste(dst, src, pt))
}
