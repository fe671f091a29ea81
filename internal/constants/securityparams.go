package constants

// Context Key Names
const (
	UserIDContextKey    = "user_id"
	UserContextKey      = "user"
	RequestIDContextKey = "request_id"
)

// Password Validation
const (
	MinPasswordLength = 6
	MaxPasswordLength = 128
	MaxNameLength     = 100
	MaxEmailLength    = 255
	MaxBioLength      = 2000
)

// Project Validation
const (
	MaxTitleLength       = 200
	MaxTechnologies      = 50
	MaxTechnologyLength  = 50
	ProjectImageFormName = "image"
)

// Accepted image content types
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}
