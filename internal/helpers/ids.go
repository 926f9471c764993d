package helpers

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// GenerateBookingID returns a booking code of the form TB-<base36 millis>-<5 random>.
func GenerateBookingID(now time.Time) (string, error) {
	suffix, err := randomString(base36, 5)
	if err != nil {
		return "", err
	}
	ts := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	return fmt.Sprintf("TB-%s-%s", ts, suffix), nil
}

// ObjectKey builds a blob key "<purpose>/<unix millis>-<sanitized name>".
func ObjectKey(purpose, filename string, now time.Time) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = unsafeKeyChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-.")
	if name == "" {
		name = "file"
	}
	return fmt.Sprintf("%s/%d-%s", purpose, now.UnixMilli(), name)
}
