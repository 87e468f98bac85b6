package files

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/anvilmcp/anvil/internal/schema"
	"github.com/anvilmcp/anvil/internal/tools"
	"github.com/anvilmcp/anvil/pkg/protocol"
)

const (
	maxReadBytes  = 10 * 1024 * 1024
	readCacheSize = 64
)

// binaryMimeTypes maps extensions of files returned as binary content
// items instead of text.
var binaryMimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
}

// ReadTool reads a file inside the sandbox. Text is decoded to UTF-8
// (BOMs, UTF-16, and common single-byte code pages); recognized image and
// audio files come back as base64 content items. Results are cached by
// path, size, and mtime.
type ReadTool struct {
	def   *schema.Definition
	sb    *Sandbox
	cache *lru.Cache[string, []protocol.Content]
}

func NewReadTool(sb *Sandbox) (*ReadTool, error) {
	def := schema.NewDefinition("fs_read")
	def.SetDescription("Read a file under the sandbox root; text is decoded to UTF-8, images and audio are returned base64-encoded")
	def.AddParameter("path", schema.TypeString, "File path relative to the root", true)
	def.AddParameter("encoding", schema.TypeString, "Text encoding: auto, utf-8, utf-16, windows-1252, iso-8859-1 (default: auto)", false)
	def.AddParameter("max_bytes", schema.TypeInteger, "Read at most this many bytes (default: 10485760)", false)

	cache, err := lru.New[string, []protocol.Content](readCacheSize)
	if err != nil {
		return nil, err
	}

	return &ReadTool{def: def, sb: sb, cache: cache}, nil
}

func (t *ReadTool) Definition() *schema.Definition {
	return t.def
}

func (t *ReadTool) Title() string {
	return "Read File"
}

func (t *ReadTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *ReadTool) Invoke(ctx context.Context, args tools.Args) (any, error) {
	path, _ := args.String("path")
	abs, err := t.sb.Resolve(path)
	if err != nil {
		return nil, err
	}

	enc := args.StringOr("encoding", "auto")
	maxBytes := args.IntOr("max_bytes", maxReadBytes)
	if maxBytes <= 0 || maxBytes > maxReadBytes {
		maxBytes = maxReadBytes
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	key := fmt.Sprintf("%s|%d|%d|%s|%d", abs, info.Size(), info.ModTime().UnixNano(), enc, maxBytes)
	if items, ok := t.cache.Get(key); ok {
		return items, nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) > maxBytes {
		data = data[:maxBytes]
	}

	var items []protocol.Content
	if mimeType, ok := binaryMimeTypes[strings.ToLower(filepath.Ext(abs))]; ok {
		encoded := base64.StdEncoding.EncodeToString(data)
		var item protocol.Content = protocol.ImageContent{MimeType: mimeType, Data: encoded}
		if strings.HasPrefix(mimeType, "audio/") {
			item = protocol.AudioContent{MimeType: mimeType, Data: encoded}
		}
		items = []protocol.Content{item}
	} else {
		text, err := decodeText(data, enc)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		items = []protocol.Content{protocol.TextContent{Text: text}}
	}

	t.cache.Add(key, items)
	return items, nil
}

// decodeText converts file bytes to a UTF-8 string. "auto" follows the BOM
// when present, accepts valid UTF-8, and falls back to Windows-1252 for
// legacy single-byte files.
func decodeText(data []byte, enc string) (string, error) {
	switch enc {
	case "", "auto":
		switch {
		case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
			return string(data[3:]), nil
		case bytes.HasPrefix(data, []byte{0xFF, 0xFE}), bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
			return transformText(data, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
		case utf8.Valid(data):
			return string(data), nil
		default:
			return transformText(data, charmap.Windows1252.NewDecoder())
		}
	case "utf-8":
		return string(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})), nil
	case "utf-16":
		return transformText(data, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
	case "windows-1252":
		return transformText(data, charmap.Windows1252.NewDecoder())
	case "iso-8859-1":
		return transformText(data, charmap.ISO8859_1.NewDecoder())
	default:
		return "", fmt.Errorf("unknown encoding %q", enc)
	}
}

func transformText(data []byte, decoder *encoding.Decoder) (string, error) {
	out, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
