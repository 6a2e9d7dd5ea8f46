package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"os"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"gorm.io/gorm"

	"github.com/yungbote/slangify-backend/internal/clients/gcp"
	"github.com/yungbote/slangify-backend/internal/domain"
	"github.com/yungbote/slangify-backend/internal/platform/logger"
	"github.com/yungbote/slangify-backend/internal/repos"
)

type AvatarService interface {
	// CreateAndUploadUserAvatar renders an initials avatar and sets the
	// avatar fields on the user struct before it is persisted.
	CreateAndUploadUserAvatar(ctx context.Context, user *domain.User) error
	// UpdateUserAvatarFromImage replaces the avatar with an uploaded image,
	// center-cropped, resized and circle-clipped.
	UpdateUserAvatarFromImage(ctx context.Context, tx *gorm.DB, user *domain.User, raw []byte) error
}

type avatarService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
	bucket   gcp.Bucket

	bgColors []color.NRGBA
	fontFace font.Face
}

// avatarPalette is the fixed set of avatar background colors.
var avatarPalette = []color.NRGBA{
	{R: 0x2E, G: 0x86, B: 0xDE, A: 0xFF},
	{R: 0x10, G: 0xAC, B: 0x84, A: 0xFF},
	{R: 0xEE, G: 0x52, B: 0x53, A: 0xFF},
	{R: 0xF3, G: 0x95, B: 0x3F, A: 0xFF},
	{R: 0x8E, G: 0x44, B: 0xAD, A: 0xFF},
	{R: 0x22, G: 0x2F, B: 0x3E, A: 0xFF},
}

func NewAvatarService(log *logger.Logger, userRepo repos.UserRepo, bucket gcp.Bucket) (AvatarService, error) {
	serviceLog := log.With("service", "AvatarService")

	fontPath := strings.TrimSpace(os.Getenv("AVATAR_FONT"))
	if fontPath == "" {
		return nil, fmt.Errorf("Env var AVATAR_FONT is empty")
	}
	serviceLog.Info("Loading avatar font", "font", fontPath)

	face, err := loadFontFace(fontPath, 206)
	if err != nil {
		return nil, fmt.Errorf("could not load avatar font: %w", err)
	}

	return &avatarService{
		log:      serviceLog,
		userRepo: userRepo,
		bucket:   bucket,
		bgColors: avatarPalette,
		fontFace: face,
	}, nil
}

func (as *avatarService) CreateAndUploadUserAvatar(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == uuid.Nil {
		return fmt.Errorf("user required")
	}

	buf, err := as.renderInitialsAvatar(user)
	if err != nil {
		return err
	}

	if as.bucket == nil {
		as.log.Debug("No bucket configured, skipping avatar upload", "user_id", user.ID)
		return nil
	}

	key := fmt.Sprintf("user_avatar/%s/%d.png", user.ID.String(), time.Now().UnixNano())
	url, err := as.bucket.Upload(ctx, key, buf.Bytes(), "image/png")
	if err != nil {
		return fmt.Errorf("failed to upload user avatar: %w", err)
	}

	user.AvatarBucketKey = key
	user.AvatarURL = url
	return nil
}

func (as *avatarService) UpdateUserAvatarFromImage(ctx context.Context, tx *gorm.DB, user *domain.User, raw []byte) error {
	if user == nil || user.ID == uuid.Nil {
		return fmt.Errorf("user required")
	}
	if as.bucket == nil {
		return fmt.Errorf("no bucket configured for avatar upload")
	}

	processed, err := processUploadedAvatar(raw, 512)
	if err != nil {
		return err
	}

	oldKey := strings.TrimSpace(user.AvatarBucketKey)
	newKey := fmt.Sprintf("user_avatar/%s/%d.png", user.ID.String(), time.Now().UnixNano())

	url, err := as.bucket.Upload(ctx, newKey, processed.Bytes(), "image/png")
	if err != nil {
		return fmt.Errorf("failed to upload user avatar: %w", err)
	}

	if err := as.userRepo.UpdateAvatar(ctx, tx, user.ID, newKey, url); err != nil {
		return fmt.Errorf("failed to record user avatar: %w", err)
	}
	user.AvatarBucketKey = newKey
	user.AvatarURL = url

	// Best-effort delete of the old object after the new one is live.
	if oldKey != "" && oldKey != newKey {
		if err := as.bucket.Delete(ctx, oldKey); err != nil {
			as.log.Warn("failed to delete old avatar (ignored)", "oldKey", oldKey, "error", err)
		}
	}
	return nil
}

func (as *avatarService) renderInitialsAvatar(user *domain.User) (bytes.Buffer, error) {
	const size = 512

	dc := gg.NewContext(size, size)
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()

	base := as.bgColors[rand.Intn(len(as.bgColors))]
	dc.SetColor(base)
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()

	initials := computeInitials(user.FirstName, user.LastName)

	dc.SetFontFace(as.fontFace)
	tw, th := dc.MeasureString(initials)
	cx, cy := float64(size)/2, float64(size)/2

	dc.SetColor(color.White)
	dc.DrawString(initials, cx-(tw/2)+5, cy+(th/2)-10)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf, nil
}

func processUploadedAvatar(raw []byte, size int) (bytes.Buffer, error) {
	var out bytes.Buffer

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return out, fmt.Errorf("decode image: %w", err)
	}

	// Center-crop to square
	b := img.Bounds()
	w := b.Dx()
	h := b.Dy()
	side := w
	if h < w {
		side = h
	}
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2

	cropRect := image.Rect(0, 0, side, side)
	cropped := image.NewRGBA(cropRect)
	draw.Draw(cropped, cropRect, img, image.Point{X: x0, Y: y0}, draw.Src)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), cropped, cropped.Bounds(), draw.Over, nil)

	dc := gg.NewContext(size, size)
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()
	dc.DrawImage(dst, 0, 0)

	if err := dc.EncodePNG(&out); err != nil {
		return out, fmt.Errorf("encode png: %w", err)
	}
	return out, nil
}

func computeInitials(first, last string) string {
	fInit := "?"
	if len(first) > 0 {
		fInit = strings.ToUpper(first[:1])
	}
	lInit := "?"
	if len(last) > 0 {
		lInit = strings.ToUpper(last[:1])
	}
	return fInit + lInit
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	face := truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	return face, nil
}
