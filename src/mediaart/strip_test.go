package mediaart

import "testing"

// TestStripInvalidEntities checks the normalization against the vectors
// every implementation of the cache has to agree on.
func TestStripInvalidEntities(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"nothing to strip here", "nothing to strip here"},
		{"Upper Case gOEs dOwN", "upper case goes down"},
		{"o", "o"},
		{"A", "a"},
		{"cool album (CD1)", "cool album"},
		{"cool album [CD1]", "cool album"},
		{"cool album {CD1}", "cool album"},
		{"cool album <CD1>", "cool album"},
		{" ", ""},
		{"     a     ", "a"},
		{"messy #title & stuff?", "messy title stuff"},
		{"Unbalanced [brackets", "unbalanced brackets"},
		{"Unbalanced (brackets", "unbalanced brackets"},
		{"Unbalanced <brackets", "unbalanced brackets"},
		{"Unbalanced brackets)", "unbalanced brackets"},
		{"Unbalanced brackets]", "unbalanced brackets"},
		{"Unbalanced brackets>", "unbalanced brackets"},
		{"Live at *WEMBLEY* dude!", "live at wembley dude"},
		{"met[xX[x]alli]ca", "metallica"},
		{"", ""},
		{"tabs\tbecome\tspaces", "tabs become spaces"},
	}

	for _, test := range tests {
		found := StripInvalidEntities(test.input)
		if found != test.expected {
			t.Errorf("stripping %q: expected %q but got %q",
				test.input, test.expected, found)
		}
	}
}

// TestStripInvalidEntitiesIdempotent makes sure stripping an already
// stripped string changes nothing. Callers rely on this when they do not
// know whether a value has been normalized before.
func TestStripInvalidEntitiesIdempotent(t *testing.T) {
	inputs := []string{
		"cool album (CD1)",
		"met[xX[x]alli]ca",
		"Live at *WEMBLEY* dude!",
		"  what   a  mess\t(really)  ",
	}

	for _, input := range inputs {
		once := StripInvalidEntities(input)
		twice := StripInvalidEntities(once)
		if once != twice {
			t.Errorf("stripping %q is not idempotent: %q != %q", input, once, twice)
		}
	}
}
