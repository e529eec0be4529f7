package helper

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"medicalbot/internal/models"
)

// GenerateUUID creates a random unique UUID string
func GenerateUUID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID: %v", err)
	}
	return id.String(), nil
}

// ChunkUUID derives a stable id from a chunk's position so re-ingesting the
// same file overwrites instead of duplicating.
func ChunkUUID(source string, page, chunk int) string {
	key := fmt.Sprintf("%s#%d#%d", source, page, chunk)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// DocumentID returns the chunk id stored in metadata, deriving one from the
// source/page/chunk keys when absent.
func DocumentID(meta map[string]any) string {
	if id, ok := meta["id"].(string); ok && id != "" {
		return id
	}
	return ChunkUUID(MetaString(meta, models.MetaSource), MetaInt(meta, models.MetaPage), MetaInt(meta, models.MetaChunk))
}

// StringMetadata flattens metadata values to strings.
func StringMetadata(meta map[string]any) map[string]string {
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		out[k] = fmt.Sprint(v)
	}
	return out
}

// AnyMetadata is the inverse of StringMetadata for the known numeric keys.
func AnyMetadata(meta map[string]string) map[string]any {
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		out[k] = v
		if k == models.MetaPage || k == models.MetaChunk {
			if n, err := strconv.Atoi(v); err == nil {
				out[k] = n
			}
		}
	}
	return out
}

func MetaString(meta map[string]any, key string) string {
	if v, ok := meta[key]; ok {
		return fmt.Sprint(v)
	}
	return ""
}

func MetaInt(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

// pretty print
func PrettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Warn().Msg("Error pretty printing")
	}
	fmt.Println(string(b))
}

// CreateFolder creates path and any missing parents.
func CreateFolder(path string) error {
	return os.MkdirAll(path, 0o755)
}
