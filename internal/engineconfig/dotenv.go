package engineconfig

import (
	"bufio"
	"os"
	"strings"
)

// ReadDotEnv reads KEY=VALUE lines from path (e.g. ".env"). Empty lines and lines starting
// with # are skipped and surrounding quotes are removed. A missing file yields an empty map.
func ReadDotEnv(path string) (map[string]string, error) {
	vars := make(map[string]string)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return vars, nil
		}
		return nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) >= 2 && (value[0] == '"' && value[len(value)-1] == '"' || value[0] == '\'' && value[len(value)-1] == '\'') {
			value = value[1 : len(value)-1]
		}
		vars[key] = value
	}
	return vars, scanner.Err()
}

// Environ returns the process environment with the variables of the dotenv file at path
// added underneath it: a variable set in the process wins over the file.
func Environ(dotenvPath string) (map[string]string, error) {
	vars, err := ReadDotEnv(dotenvPath)
	if err != nil {
		return nil, err
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return vars, nil
}
