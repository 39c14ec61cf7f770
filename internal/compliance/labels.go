package compliance

import "strings"

// CustomLabelName is reported for every label outside the built-in family.
const CustomLabelName = "Custom Label"

// builtInLabelFamily holds the reserved GUID segments of the default
// sensitivity labels shipped by the platform vendor. The fourth segment
// selects the label and is left empty here.
var builtInLabelFamily = [5]string{"defa4170", "0d19", "0005", "", "bc88714345d2"}

// builtInLabels maps the fourth GUID segment of the reserved family to the
// built-in label name.
var builtInLabels = map[string]string{
	"0000": "Personal",
	"0001": "Public",
	"0002": "General",
	"0003": "Confidential",
	"0004": `Confidential\Anyone (unrestricted)`,
	"0005": `Confidential\All Employees`,
	"0006": `Confidential\Trusted People`,
	"0007": "Highly Confidential",
	"0008": `Highly Confidential\All Employees`,
	"0009": `Highly Confidential\Specified People`,
}

// ClassifyLabel returns the display name of a sensitivity label identifier
// and whether it is one of the built-in labels.
func ClassifyLabel(labelID string) (string, bool) {
	segments := strings.Split(normalizeLabelID(labelID), "-")
	if len(segments) != 5 {
		return CustomLabelName, false
	}
	for i, want := range builtInLabelFamily {
		if want != "" && segments[i] != want {
			return CustomLabelName, false
		}
	}
	if name, ok := builtInLabels[segments[3]]; ok {
		return name, true
	}
	return CustomLabelName, false
}

// normalizeLabelID lower-cases a GUID and strips surrounding braces.
func normalizeLabelID(labelID string) string {
	id := strings.TrimSpace(labelID)
	id = strings.TrimPrefix(id, "{")
	id = strings.TrimSuffix(id, "}")
	return strings.ToLower(id)
}
