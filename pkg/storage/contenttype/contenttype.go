// File: pkg/storage/contenttype/contenttype.go
package contenttype

import "strings"

// Default is used for unknown or missing extensions
const Default = "application/octet-stream"

// Static so that results do not depend on the host's mime.types files
var byExtension = map[string]string{
	// Images
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
	"svg":  "image/svg+xml",
	"bmp":  "image/bmp",
	"ico":  "image/x-icon",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"avif": "image/avif",
	"heic": "image/heic",

	// Documents
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"odt":  "application/vnd.oasis.opendocument.text",
	"ods":  "application/vnd.oasis.opendocument.spreadsheet",
	"rtf":  "application/rtf",
	"epub": "application/epub+zip",

	// Text and data
	"txt":  "text/plain",
	"md":   "text/markdown",
	"csv":  "text/csv",
	"tsv":  "text/tab-separated-values",
	"html": "text/html",
	"htm":  "text/html",
	"css":  "text/css",
	"js":   "text/javascript",
	"mjs":  "text/javascript",
	"json": "application/json",
	"xml":  "application/xml",
	"yaml": "application/yaml",
	"yml":  "application/yaml",
	"wasm": "application/wasm",

	// Archives
	"zip": "application/zip",
	"gz":  "application/gzip",
	"tgz": "application/gzip",
	"tar": "application/x-tar",
	"7z":  "application/x-7z-compressed",
	"rar": "application/vnd.rar",
	"bz2": "application/x-bzip2",
	"zst": "application/zstd",

	// Audio
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"ogg":  "audio/ogg",
	"oga":  "audio/ogg",
	"flac": "audio/flac",
	"aac":  "audio/aac",
	"m4a":  "audio/mp4",
	"weba": "audio/webm",

	// Video
	"mp4":  "video/mp4",
	"m4v":  "video/mp4",
	"webm": "video/webm",
	"ogv":  "video/ogg",
	"mov":  "video/quicktime",
	"avi":  "video/x-msvideo",
	"mkv":  "video/x-matroska",
	"mpeg": "video/mpeg",

	// Fonts
	"woff":  "font/woff",
	"woff2": "font/woff2",
	"ttf":   "font/ttf",
	"otf":   "font/otf",
}

// Resolve maps the extension of the final path segment to a MIME type
// Matching is case-insensitive and unknown extensions resolve to Default
func Resolve(path string) string {
	name := path
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}

	dot := strings.LastIndex(name, ".")
	if dot < 0 || dot == len(name)-1 {
		return Default
	}

	if mimeType, ok := byExtension[strings.ToLower(name[dot+1:])]; ok {
		return mimeType
	}
	return Default
}

// Prefers the declared type and falls back to the extension table
func Choose(declared, path string) string {
	if declared = strings.TrimSpace(declared); declared != "" {
		return declared
	}
	return Resolve(path)
}
