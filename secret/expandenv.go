package secret

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
)

var bracedEnvPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandEnvStrict replaces every ${VAR} in s with its value. Every
// referenced variable must be set; the error names all missing variables.
// A bare $ is kept as written, so passwords like pa$word survive, and $$
// produces a literal $.
func ExpandEnvStrict(s string) (string, error) {
	const dollar = "\x00doccache-dollar\x00"
	s = strings.ReplaceAll(s, "$$", dollar)

	var missing []string
	out := bracedEnvPattern.ReplaceAllStringFunc(s, func(m string) string {
		name := m[2 : len(m)-1]
		v, ok := os.LookupEnv(name)
		if !ok && !slices.Contains(missing, name) {
			missing = append(missing, name)
		}
		return v
	})
	if len(missing) > 0 {
		slices.Sort(missing)
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}

	return strings.ReplaceAll(out, dollar, "$"), nil
}
