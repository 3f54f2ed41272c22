package mediaart

import "testing"

// TestDeriveKeyFilenames checks the full identity derivation against the
// file names other cache implementations produce for the same metadata.
func TestDeriveKeyFilenames(t *testing.T) {
	tests := []struct {
		artist   *string
		title    *string
		expected string
	}{
		{
			String("Beatles"), String("Sgt. Pepper"),
			"album-2a9ea35253dbec60e76166ec8420fbda-cfba4326a32b44b8760b3a2fc827a634.jpeg",
		},
		{
			String(""), String("sgt. pepper"),
			"album-d41d8cd98f00b204e9800998ecf8427e-cfba4326a32b44b8760b3a2fc827a634.jpeg",
		},
		{
			String(" "), String("sgt. pepper"),
			"album-d41d8cd98f00b204e9800998ecf8427e-cfba4326a32b44b8760b3a2fc827a634.jpeg",
		},
		{
			nil, String("sgt. pepper"),
			"album-cfba4326a32b44b8760b3a2fc827a634-7215ee9c7d9dc229d2921a40e899ec5f.jpeg",
		},
		{
			String("Beatles"), nil,
			"album-2a9ea35253dbec60e76166ec8420fbda-7215ee9c7d9dc229d2921a40e899ec5f.jpeg",
		},
	}

	for _, test := range tests {
		key, ok := DeriveKey(test.artist, test.title)
		if !ok {
			t.Fatalf("expected a key for %v/%v but got none", test.artist, test.title)
		}

		found := key.Filename("album")
		if found != test.expected {
			t.Errorf("expected file name %s but got %s", test.expected, found)
		}
	}
}

// TestDeriveKeyNormalizationEquivalence makes sure metadata which strips
// to the same string derives the same key.
func TestDeriveKeyNormalizationEquivalence(t *testing.T) {
	first, ok := DeriveKey(String("Beatles"), String("Sgt. Pepper (CD1)"))
	if !ok {
		t.Fatal("expected a derived key")
	}

	second, ok := DeriveKey(String("  BEATLES  "), String("sgt. pepper"))
	if !ok {
		t.Fatal("expected a derived key")
	}

	if first != second {
		t.Errorf("expected equivalent metadata to share a key: %v != %v",
			first, second)
	}
}

func TestDeriveKeyNoIdentity(t *testing.T) {
	if _, ok := DeriveKey(nil, nil); ok {
		t.Error("expected no key for fully absent metadata")
	}
}

func TestFilenameDefaultPrefix(t *testing.T) {
	key, _ := DeriveKey(String("Beatles"), String("Sgt. Pepper"))

	expected := "album-2a9ea35253dbec60e76166ec8420fbda-" +
		"cfba4326a32b44b8760b3a2fc827a634.jpeg"
	if found := key.Filename(""); found != expected {
		t.Errorf("expected default prefix file name %s but got %s", expected, found)
	}
}
