// Sound catalog tests in Chime.

package sound

import (
	"Chime/internal/entity"
	"Chime/pkg/log"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// writeSoundFile drops a file whose header carries real audio magic bytes.
func writeSoundFile(t *testing.T, dir, name string, head []byte) {
	t.Helper()
	payload := append(append([]byte{}, head...), make([]byte, 64)...)
	assert.NoError(t, os.WriteFile(filepath.Join(dir, name), payload, 0o644))
}

func TestScanCatalogListsAudioFilesOnly(t *testing.T) {
	logger := log.New("test")
	dir := t.TempDir()

	// mp3 with an ID3 header and a canonical RIFF/WAVE file
	writeSoundFile(t, dir, "NickPowerHouse.mp3", []byte("ID3"))
	writeSoundFile(t, dir, "OceanDrift.wav", []byte{'R', 'I', 'F', 'F', 0, 0, 0, 0, 'W', 'A', 'V', 'E'})
	// Extension lies, the header is plain text
	writeSoundFile(t, dir, "README.mp3", []byte("just some notes"))
	assert.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))

	svc := NewService(dir, logger)
	sounds := svc.getsounds(context.Background())

	assert.Equal(t, []entity.Sound{
		{Value: "NickPowerHouse.mp3", Label: "Nick Power House"},
		{Value: "OceanDrift.wav", Label: "Ocean Drift"},
	}, sounds)
}

func TestScanCatalogFallsBackToBuiltIn(t *testing.T) {
	logger := log.New("test")

	// No directory provisioned
	assert.Equal(t, defaultCatalog, NewService("", logger).getsounds(context.Background()))

	// Unreadable directory
	assert.Equal(t, defaultCatalog, NewService(filepath.Join(t.TempDir(), "missing"), logger).getsounds(context.Background()))

	// Directory with nothing playable in it
	empty := t.TempDir()
	writeSoundFile(t, empty, "notes.txt", []byte("not audio"))
	assert.Equal(t, defaultCatalog, NewService(empty, logger).getsounds(context.Background()))
}

func TestSoundLabel(t *testing.T) {
	cases := map[string]string{
		"NickPowerHouse.mp3": "Nick Power House",
		"BeachBump.mp3":      "Beach Bump",
		"chill.wav":          "chill",
		"ABC.mp3":            "ABC",
	}
	for name, want := range cases {
		assert.Equal(t, want, soundLabel(name))
	}
}
