package epub

import (
	"errors"
	"testing"
)

func TestCheckDRM_NoEncryptionDescriptor(t *testing.T) {
	zr := newZipReader(t, map[string]string{
		"OEBPS/content.opf": sampleOPF,
	})

	obfuscated, err := checkDRM(zr)
	if err != nil {
		t.Fatalf("checkDRM: %v", err)
	}
	if obfuscated {
		t.Error("expected no font obfuscation reported")
	}
}

func TestCheckDRM_FontObfuscationIsNotDRM(t *testing.T) {
	encryptionXML := `<?xml version="1.0"?>
<encryption xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <EncryptedData xmlns="http://www.w3.org/2001/04/xmlenc#">
    <EncryptionMethod Algorithm="http://www.idpf.org/2008/embedding"/>
    <CipherData><CipherReference URI="fonts/embedded.otf"/></CipherData>
  </EncryptedData>
</encryption>`
	zr := newZipReader(t, map[string]string{
		"META-INF/encryption.xml": encryptionXML,
	})

	obfuscated, err := checkDRM(zr)
	if err != nil {
		t.Fatalf("checkDRM: unexpected error for font obfuscation: %v", err)
	}
	if !obfuscated {
		t.Error("expected font obfuscation to be reported")
	}
}

func TestCheckDRM_AdobeADEPTIsDRM(t *testing.T) {
	encryptionXML := `<?xml version="1.0"?>
<encryption xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <EncryptedData xmlns="http://www.w3.org/2001/04/xmlenc#">
    <EncryptionMethod Algorithm="http://www.w3.org/2001/04/xmlenc#aes256-cbc"/>
    <KeyInfo xmlns="http://www.w3.org/2000/09/xmldsig#">
      <resource xmlns="http://ns.adobe.com/adept">urn:uuid:deadbeef</resource>
    </KeyInfo>
  </EncryptedData>
</encryption>`
	zr := newZipReader(t, map[string]string{
		"META-INF/encryption.xml": encryptionXML,
	})

	_, err := checkDRM(zr)
	if !errors.Is(err, ErrDRMProtected) {
		t.Fatalf("err = %v, want ErrDRMProtected", err)
	}
}

func TestCheckDRM_SinfIndicatesFairPlay(t *testing.T) {
	zr := newZipReader(t, map[string]string{
		"META-INF/sinf.xml": "<sinf/>",
	})

	_, err := checkDRM(zr)
	if !errors.Is(err, ErrDRMProtected) {
		t.Fatalf("err = %v, want ErrDRMProtected", err)
	}
}

func TestCheckDRM_UnrecognizedEncryptedDataIsTreatedAsDRM(t *testing.T) {
	encryptionXML := `<?xml version="1.0"?>
<encryption xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <EncryptedData xmlns="http://www.w3.org/2001/04/xmlenc#">
    <EncryptionMethod Algorithm="http://example.com/unknown-scheme"/>
  </EncryptedData>
</encryption>`
	zr := newZipReader(t, map[string]string{
		"META-INF/encryption.xml": encryptionXML,
	})

	_, err := checkDRM(zr)
	if !errors.Is(err, ErrDRMProtected) {
		t.Fatalf("err = %v, want ErrDRMProtected for an unrecognized protection scheme", err)
	}
}

func TestCheckDRM_MalformedEncryptionXMLFailsClosed(t *testing.T) {
	zr := newZipReader(t, map[string]string{
		"META-INF/encryption.xml": "not xml at all {{{",
	})

	_, err := checkDRM(zr)
	if !errors.Is(err, ErrDRMProtected) {
		t.Fatalf("err = %v, want ErrDRMProtected for unparsable descriptor", err)
	}
}

func TestReadBook_RejectsDRMProtectedArchive(t *testing.T) {
	files := sampleEPubFiles()
	files["META-INF/sinf.xml"] = "<sinf/>"
	zr := newZipReader(t, files)

	_, err := readBook(zr)
	if !errors.Is(err, ErrDRMProtected) {
		t.Fatalf("err = %v, want ErrDRMProtected", err)
	}
}

func TestReadBook_SurfacesFontObfuscationAsWarning(t *testing.T) {
	files := sampleEPubFiles()
	files["META-INF/encryption.xml"] = `<?xml version="1.0"?>
<encryption xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <EncryptedData xmlns="http://www.w3.org/2001/04/xmlenc#">
    <EncryptionMethod Algorithm="http://ns.adobe.com/pdf/enc#RC"/>
  </EncryptedData>
</encryption>`
	zr := newZipReader(t, files)

	book, err := readBook(zr)
	if err != nil {
		t.Fatalf("readBook: unexpected error for font-obfuscated book: %v", err)
	}
	found := false
	for _, w := range book.Warnings {
		if w == "font obfuscation detected; obfuscated fonts may not render correctly" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected font obfuscation warning, got %v", book.Warnings)
	}
}
