// Service layer of the internal package sound.
// Builds the catalog of alarm sounds selectable by clients.

package sound

import (
	"Chime/internal/entity"
	"Chime/pkg/log"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/h2non/filetype"
)

// Built-in catalog used when no sound directory is provisioned.
var defaultCatalog = []entity.Sound{
	{Value: "NickPowerHouse.mp3", Label: "Nick Power House"},
	{Value: "DolphinWavvves.mp3", Label: "Dolphin Wavvves"},
	{Value: "MuteCityFluff.mp3", Label: "Mute City Fluff"},
	{Value: "BeachBump.mp3", Label: "Beach Bump"},
}

type Service interface {
	// getsounds returns the catalog of selectable alarm sounds.
	getsounds(ctx context.Context) []entity.Sound
}

// The catalog is built once at boot, sound files are server-provisioned
// and never change at runtime.
type service struct {
	catalog []entity.Sound
	logger  log.Logger
}

func NewService(dir string, logger log.Logger) Service {
	return service{catalog: scanCatalog(dir, logger), logger: logger}
}

func (s service) getsounds(ctx context.Context) []entity.Sound {
	return s.catalog
}

// scanCatalog lists the audio files under dir, verified by magic bytes.
// Falls back to the built-in catalog when the directory is unusable.
func scanCatalog(dir string, logger log.Logger) []entity.Sound {
	if dir == "" {
		return defaultCatalog
	}
	files, oserr := os.ReadDir(dir)
	if oserr != nil {
		logger.Warn().Err(oserr).Msgf("Couldn't scan sound directory %s, using the built-in catalog", dir)
		return defaultCatalog
	}
	catalog := []entity.Sound{}
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		if !isAudioFile(filepath.Join(dir, file.Name())) {
			logger.Debug().Msgf("Skipping non-audio file %s in sound directory", file.Name())
			continue
		}
		catalog = append(catalog, entity.Sound{
			Value: file.Name(),
			Label: soundLabel(file.Name()),
		})
	}
	if len(catalog) == 0 {
		logger.Warn().Msgf("No audio files found under %s, using the built-in catalog", dir)
		return defaultCatalog
	}
	return catalog
}

// isAudioFile sniffs the file header instead of trusting the extension.
func isAudioFile(path string) bool {
	f, oserr := os.Open(path)
	if oserr != nil {
		return false
	}
	defer f.Close()
	// filetype needs at most 261 bytes to match
	head := make([]byte, 261)
	n, rderr := f.Read(head)
	if rderr != nil && rderr != io.EOF {
		return false
	}
	return filetype.IsAudio(head[:n])
}

// soundLabel derives a display label from the filename, splitting
// camel-cased words: "NickPowerHouse.mp3" -> "Nick Power House".
func soundLabel(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	var label strings.Builder
	var prev rune
	for _, r := range base {
		if unicode.IsUpper(r) && unicode.IsLower(prev) {
			label.WriteRune(' ')
		}
		label.WriteRune(r)
		prev = r
	}
	return label.String()
}
