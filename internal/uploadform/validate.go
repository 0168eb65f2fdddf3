package uploadform

import (
	"github.com/mansoorceksport/fileupload/internal/domain"
)

// Form field keys
const (
	FieldName = domain.FieldName
	FieldFile = domain.FieldFile
)

// FieldErrors maps a field key to the message shown under that field
type FieldErrors map[string]string

// Has reports whether field failed validation
func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

func (e FieldErrors) clone() FieldErrors {
	if len(e) == 0 {
		return nil
	}
	out := make(FieldErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// ValidateFile checks presence, then size, then type
func ValidateFile(file *File) error {
	if file == nil {
		return domain.ErrFileRequired
	}
	return domain.CheckFile(file.Size, file.MIMEType, domain.MaxFileSize)
}

// Validate checks the whole form. An empty result means the form may be submitted.
func Validate(name string, file *File) FieldErrors {
	errs := FieldErrors{}
	if name == "" {
		errs[FieldName] = domain.ErrNameRequired.Error()
	}
	if err := ValidateFile(file); err != nil {
		errs[FieldFile] = err.Error()
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
