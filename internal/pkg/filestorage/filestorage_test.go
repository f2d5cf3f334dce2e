package filestorage

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func TestCleanKey(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "admissions/aarav/photo.jpg", want: "admissions/aarav/photo.jpg"},
		{in: "/admissions//aarav/./photo.jpg", want: "admissions/aarav/photo.jpg"},
		{in: "admissions\\aarav\\photo.jpg", want: "admissions/aarav/photo.jpg"},
		{in: "../etc/passwd", want: "etc/passwd"},
		{in: "", wantErr: true},
		{in: "/", wantErr: true},
	}
	for _, tt := range tests {
		got, err := CleanKey(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidKey) {
				t.Fatalf("CleanKey(%q) err = %v, want ErrInvalidKey", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("CleanKey(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestAdmissionKey(t *testing.T) {
	if got := AdmissionKey("ENQ-1001", "aarav-sharma", "photo"); got != "admissions/ENQ-1001/aarav-sharma-photo" {
		t.Fatalf("AdmissionKey = %q", got)
	}
}

func TestLocalStorageUploadOverwriteDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "http://localhost:8080/")
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	ctx := context.Background()
	key := AdmissionKey("ENQ-1001", "aarav-sharma", "photo")

	obj, err := store.Upload(ctx, key, []byte("first"), "image/jpeg")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if obj.URL != "http://localhost:8080/uploads/admissions/ENQ-1001/aarav-sharma-photo" {
		t.Fatalf("URL = %q", obj.URL)
	}
	if obj.PublicID != key {
		t.Fatalf("PublicID = %q, want %q", obj.PublicID, key)
	}

	if _, err := store.Upload(ctx, key, []byte("second"), "image/jpeg"); err != nil {
		t.Fatalf("second Upload: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dir, "admissions", "ENQ-1001", "aarav-sharma-photo"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("content = %q, want %q", got, "second")
	}

	if err := store.Delete(ctx, obj.PublicID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, obj.PublicID); err != nil {
		t.Fatalf("Delete of missing object: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "admissions", "ENQ-1001", "aarav-sharma-photo")); !os.IsNotExist(err) {
		t.Fatalf("file still exists, stat err = %v", err)
	}
}

func TestLocalStorageCancelledContext(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Upload(ctx, "a/b.txt", []byte("x"), ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestNormalizePhotoShrinksLargeImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1200, 800))
	for x := 0; x < 1200; x++ {
		src.Set(x, x%800, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}

	out := NormalizePhoto(buf.Bytes(), "me.png")
	if out.ContentType != "image/jpeg" {
		t.Fatalf("ContentType = %q, want image/jpeg", out.ContentType)
	}
	img, err := imaging.Decode(bytes.NewReader(out.Data))
	if err != nil {
		t.Fatalf("decode normalized: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 600 || b.Dy() != 400 {
		t.Fatalf("bounds = %dx%d, want 600x400", b.Dx(), b.Dy())
	}
}

func TestNormalizePhotoPassesThroughNonImages(t *testing.T) {
	data := []byte("%PDF-1.4 not an image")
	out := NormalizePhoto(data, "Scan.PDF")
	if !bytes.Equal(out.Data, data) {
		t.Fatal("expected raw bytes to be kept")
	}
	if out.ContentType != "application/pdf" {
		t.Fatalf("ContentType = %q, want application/pdf", out.ContentType)
	}
}

func TestNormalizePhotoSkipsOversizedCanvas(t *testing.T) {
	// A PNG whose header declares 50000x50000 pixels with no image data behind it.
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], 50000)
	binary.BigEndian.PutUint32(ihdr[4:8], 50000)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 2 // truecolor

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	chunk := append([]byte("IHDR"), ihdr...)
	binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	data := buf.Bytes()

	out := NormalizePhoto(data, "huge.png")
	if !bytes.Equal(out.Data, data) {
		t.Fatal("expected oversized image to be stored unchanged")
	}
	if out.ContentType != "image/png" {
		t.Fatalf("ContentType = %q, want image/png", out.ContentType)
	}
}
