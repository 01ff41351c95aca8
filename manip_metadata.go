package epub

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// modifyEPUB reads the ePub at path, applies modify to the resulting Book,
// and writes it back atomically (§4.1, §4.5). ModifyMetadataField is its
// only caller; the other C7 functions edit an in-memory Book.
func modifyEPUB(path string, modify func(*Book) error, opts ...Option) error {
	book, err := ReadBook(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}
	if err := modify(book); err != nil {
		return err
	}
	return WriteBook(book, path, opts...)
}

// SetMetadataField sets a well-known metadata field (title, creator/author,
// language, publisher, description, rights, identifier, date, subject) or,
// for any other field name, a Custom entry.
func SetMetadataField(book *Book, field, value string) error {
	switch field {
	case "title":
		if len(book.Metadata.Titles) == 0 {
			book.Metadata.Titles = []string{value}
		} else {
			book.Metadata.Titles[0] = value
		}
	case "creator", "author":
		book.Metadata.Creators = []Contributor{{Name: value}}
	case "language":
		book.Metadata.Languages = []string{value}
	case "publisher":
		book.Metadata.Publisher = value
	case "description":
		book.Metadata.Description = value
	case "rights":
		book.Metadata.Rights = value
	case "identifier":
		if len(book.Metadata.Identifiers) == 0 {
			book.Metadata.Identifiers = []Identifier{{Value: value}}
		} else {
			book.Metadata.Identifiers[0].Value = value
		}
	case "date":
		book.Metadata.Date = value
	case "subject":
		book.Metadata.Subjects = append(book.Metadata.Subjects, value)
	default:
		if book.Metadata.Custom == nil {
			book.Metadata.Custom = make(map[string]string)
		}
		book.Metadata.Custom[field] = value
	}
	return nil
}

// RemoveMetadataField clears a well-known metadata field, or deletes a
// Custom entry for any other field name.
func RemoveMetadataField(book *Book, field string) error {
	switch field {
	case "title":
		book.Metadata.Titles = nil
	case "creator", "author":
		book.Metadata.Creators = nil
	case "language":
		book.Metadata.Languages = nil
	case "publisher":
		book.Metadata.Publisher = ""
	case "description":
		book.Metadata.Description = ""
	case "rights":
		book.Metadata.Rights = ""
	case "identifier":
		book.Metadata.Identifiers = nil
	case "date":
		book.Metadata.Date = ""
	case "subject":
		book.Metadata.Subjects = nil
	default:
		delete(book.Metadata.Custom, field)
	}
	return nil
}

// ImportMetadata replaces book's metadata with the contents of a
// metadata.yml-shaped YAML file at yamlPath.
func ImportMetadata(book *Book, yamlPath string) error {
	data, err := os.ReadFile(yamlPath)
	if err != nil {
		return errors.Wrapf(err, "reading %s", yamlPath)
	}
	var y bookMetadataYAML
	if err := yaml.Unmarshal(data, &y); err != nil {
		return errors.Wrapf(ErrXMLParse, "parsing %s: %v", yamlPath, err)
	}
	book.Metadata = yamlToMetadata(y)
	return nil
}

// ExportMetadata writes book's metadata to yamlPath in the metadata.yml
// schema.
func ExportMetadata(book *Book, yamlPath string) error {
	y := metadataToYAML(book.Metadata, book.Version)
	data, err := yaml.Marshal(y)
	if err != nil {
		return errors.Wrap(err, "marshaling metadata")
	}
	if err := os.WriteFile(yamlPath, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", yamlPath)
	}
	return nil
}

// ModifyMetadataField is the atomic read-modify-write entry point for
// "goepub meta set"/"remove": it reads path, applies the named
// operation to a single field, and writes the result back in place.
func ModifyMetadataField(path, field, value string, remove bool, opts ...Option) error {
	return modifyEPUB(path, func(b *Book) error {
		if remove {
			return RemoveMetadataField(b, field)
		}
		return SetMetadataField(b, field, value)
	}, opts...)
}
