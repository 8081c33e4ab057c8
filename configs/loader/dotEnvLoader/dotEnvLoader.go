package dotEnvLoader

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DotEnvLoader reads .env when present and overlays process env vars
// on top, so container deployments work without the file.
type DotEnvLoader struct {
	Path string
}

func (l DotEnvLoader) Load() (map[string]string, error) {
	path := l.Path
	if path == "" {
		path = ".env"
	}

	envs := make(map[string]string)
	if _, err := os.Stat(path); err == nil {
		fileEnvs, err := godotenv.Read(path)
		if err != nil {
			return nil, err
		}
		for k, v := range fileEnvs {
			envs[k] = v
		}
	}

	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			envs[parts[0]] = parts[1]
		}
	}
	return envs, nil
}
