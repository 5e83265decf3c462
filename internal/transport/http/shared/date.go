package shared

import "time"

var dateLayouts = []string{"2006-01-02", time.RFC3339}

// ParseDate accepts YYYY-MM-DD or RFC3339. An empty value parses to
// the zero time without error so optional fields stay optional.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		if t, err = time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
