package epub

import (
	"archive/zip"
	"encoding/xml"
	"strings"
)

// encryptionFilePath is the standard path for the encryption descriptor.
const encryptionFilePath = "META-INF/encryption.xml"

// sinfFilePath is the path that indicates Apple FairPlay DRM.
const sinfFilePath = "META-INF/sinf.xml"

// fontObfuscationURIs lists algorithm identifiers that mark an EncryptedData
// entry as the IDPF/Adobe font-mangling scheme rather than real DRM. A reader
// under this spec's "does not process DRM" non-goal still has to tell the two
// apart: font-obfuscated EPUBs are fully readable and must not be rejected.
var fontObfuscationURIs = map[string]bool{
	"http://www.idpf.org/2008/embedding": true, // IDPF font obfuscation
	"http://ns.adobe.com/pdf/enc#RC":     true, // Adobe font obfuscation
}

// drmNamespaceSignatures are substrings that identify a real content-protection
// scheme (as opposed to font obfuscation) wherever they appear in an algorithm
// URI or KeyInfo blob.
var drmNamespaceSignatures = []string{
	"http://ns.adobe.com/adept",      // Adobe ADEPT
	"http://readium.org/2014/01/lcp", // Readium LCP
}

// XML structures for parsing encryption.xml.

type xmlEncryption struct {
	XMLName       xml.Name           `xml:"encryption"`
	EncryptedData []xmlEncryptedData `xml:"EncryptedData"`
}

type xmlEncryptedData struct {
	EncryptionMethod xmlEncryptionMethod `xml:"EncryptionMethod"`
	KeyInfo          xmlKeyInfo          `xml:"KeyInfo"`
}

type xmlEncryptionMethod struct {
	Algorithm string `xml:"Algorithm,attr"`
}

type xmlKeyInfo struct {
	InnerXML string `xml:",innerxml"`
}

// checkDRM inspects META-INF of an opened archive and reports whether the
// book is readable-but-font-obfuscated, genuinely DRM-locked, or neither.
// This is a gate on readability, not a DRM-removal step: a book flagged
// ErrDRMProtected is refused outright, while font obfuscation is surfaced
// as a warning so the rest of the pipeline still runs.
//
// Returns:
//   - (false, nil)             – no encryption descriptor, or an empty one
//   - (true,  nil)              – only font-obfuscation entries present
//   - (false, ErrDRMProtected)  – a real content-protection scheme is present
func checkDRM(zr *zip.Reader) (fontObfuscation bool, err error) {
	if findFileInsensitive(zr, sinfFilePath) != nil {
		return false, ErrDRMProtected
	}

	descriptor := findFileInsensitive(zr, encryptionFilePath)
	if descriptor == nil {
		return false, nil
	}

	raw, err := readZipFile(descriptor)
	if err != nil {
		return false, err
	}
	raw = stripBOM(raw)

	var enc xmlEncryption
	if err := xml.Unmarshal(raw, &enc); err != nil {
		return false, ErrDRMProtected
	}

	if len(enc.EncryptedData) == 0 {
		return false, nil
	}

	for _, entry := range enc.EncryptedData {
		algo := entry.EncryptionMethod.Algorithm

		if fontObfuscationURIs[algo] {
			fontObfuscation = true
			continue
		}
		if carriesDRMSignature(algo) || carriesDRMSignature(entry.KeyInfo.InnerXML) {
			return false, ErrDRMProtected
		}

		// Anything else under EncryptedData is an unrecognized protection
		// scheme; refuse rather than guess.
		return false, ErrDRMProtected
	}

	return fontObfuscation, nil
}

// carriesDRMSignature reports whether s contains a known DRM namespace marker.
func carriesDRMSignature(s string) bool {
	for _, sig := range drmNamespaceSignatures {
		if strings.Contains(s, sig) {
			return true
		}
	}
	return false
}
