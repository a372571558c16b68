package apiapp

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/webp"

	_ "image/gif"
	_ "image/jpeg"
)

const (
	maxPhotoUpload  = 10 << 20
	photoEdgePixels = 256
)

func (s *server) photoPath(id int) string {
	return filepath.Join(s.cfg.PhotoDir, strconv.Itoa(id)+".png")
}

func (s *server) getPersonPhoto(w http.ResponseWriter, r *http.Request, id int) {
	data, err := os.ReadFile(s.photoPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, "no photo on file")
			return
		}
		writeError(w, http.StatusInternalServerError, "unable to read photo")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(data)
}

// uploadPersonPhoto accepts a jpeg/png/gif/webp badge photo, scales it into
// a square thumbnail, and stores it as PNG next to the data file.
func (s *server) uploadPersonPhoto(w http.ResponseWriter, r *http.Request, id int) {
	if !s.personExists(id) {
		writeError(w, http.StatusNotFound, "person not found")
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxPhotoUpload+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unable to read upload")
		return
	}
	if len(raw) == 0 {
		writeError(w, http.StatusBadRequest, "photo is empty")
		return
	}
	if len(raw) > maxPhotoUpload {
		writeError(w, http.StatusRequestEntityTooLarge, "photo exceeds 10 MB")
		return
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		if decoded, decodeErr := webp.Decode(bytes.NewReader(raw)); decodeErr == nil {
			img = decoded
		} else {
			writeError(w, http.StatusBadRequest, "unable to decode photo")
			return
		}
	}

	thumb := scaleToSquare(img, photoEdgePixels)

	var out bytes.Buffer
	if err := png.Encode(&out, thumb); err != nil {
		writeError(w, http.StatusInternalServerError, "unable to encode photo")
		return
	}
	if err := os.MkdirAll(s.cfg.PhotoDir, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, "unable to store photo")
		return
	}
	if err := os.WriteFile(s.photoPath(id), out.Bytes(), 0o644); err != nil {
		writeError(w, http.StatusInternalServerError, "unable to store photo")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "photo updated"})
}

// scaleToSquare center-crops to a square and resamples with Catmull-Rom.
func scaleToSquare(img image.Image, edge int) image.Image {
	bounds := img.Bounds()
	size := bounds.Dx()
	if bounds.Dy() < size {
		size = bounds.Dy()
	}
	cropX := bounds.Min.X + (bounds.Dx()-size)/2
	cropY := bounds.Min.Y + (bounds.Dy()-size)/2
	crop := image.Rect(cropX, cropY, cropX+size, cropY+size)

	dst := image.NewRGBA(image.Rect(0, 0, edge, edge))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, crop, xdraw.Over, nil)
	return dst
}

func (s *server) personExists(id int) bool {
	for _, p := range s.store.Personnel() {
		if p.ID == id {
			return true
		}
	}
	return false
}
