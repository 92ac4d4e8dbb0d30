package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kama950028/KadrSp/internal/model"
)

var (
	// an entry ends right after a "<year>." token: "... 12.05.2023. Next course ..."
	credentialBoundary = regexp.MustCompile(`((?:19|20)\d{2})\s*(?:г\.|года?)?\.\s+`)
	trailingYear       = regexp.MustCompile(`(?:^|\D)((?:19|20)\d{2})\s*(?:г\.?|года?)?[.\s]*$`)
	trailingDate       = regexp.MustCompile(`[\s,]*(?:\d{1,2}\.\d{1,2}\.)?(?:19|20)\d{2}\s*(?:г\.?|года?)?[.\s]*$`)
)

const retrainingMarker = "переподготовк"

// Credentials split qualification text
type Credentials struct {
	Qualifications []model.Qualification
	Retrainings    []model.Retraining
}

// SplitCredentials parses the qualification column.
//
// Entries are separated by ';', newlines, or a year followed by a period.
// Each entry needs a trailing year; the trailing date is cut from the title.
// Entries mentioning professional retraining become Retraining records.
func SplitCredentials(raw string) Credentials {
	var out Credentials
	for _, e := range splitCredentialEntries(raw) {
		name, year, ok := parseCredential(e)
		if !ok {
			continue
		}
		if strings.Contains(Fold(name), retrainingMarker) {
			out.Retrainings = append(out.Retrainings, model.Retraining{ProgramName: name, Year: year})
		} else {
			out.Qualifications = append(out.Qualifications, model.Qualification{CourseName: name, Year: year})
		}
	}
	return out
}

// SplitRetrainings parses a dedicated retraining column; every dated entry is a Retraining
func SplitRetrainings(raw string) []model.Retraining {
	var out []model.Retraining
	for _, e := range splitCredentialEntries(raw) {
		if name, year, ok := parseCredential(e); ok {
			out = append(out, model.Retraining{ProgramName: name, Year: year})
		}
	}
	return out
}

func splitCredentialEntries(raw string) []string {
	marked := credentialBoundary.ReplaceAllString(raw, "$0;")
	return SplitList(marked)
}

func parseCredential(entry string) (string, int, bool) {
	m := trailingYear.FindStringSubmatch(entry)
	if m == nil {
		return "", 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return "", 0, false
	}
	name := strings.Trim(trailingDate.ReplaceAllString(entry, ""), " ,.;")
	if name == "" {
		return "", 0, false
	}
	return name, year, true
}
