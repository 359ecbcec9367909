package configparser

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

var ErrNoFilePath = errors.New("no file path provided")

// LoadAndParseYaml loads optional .env and YAML files into the environment
// and then fills dst from its `env`/`default` struct tags.
// A missing YAML file is not an error: configuration may come from the environment only.
func LoadAndParseYaml(filepath string, dst any) error {
	if err := LoadDotEnv(".env"); err != nil {
		return err
	}

	if err := LoadYamlFile(filepath); err != nil && !errors.Is(err, os.ErrNotExist) && !errors.Is(err, ErrNoFilePath) {
		return err
	}

	return ParseEnv(dst)
}

// LoadDotEnv loads variables from the given dotenv files. Missing files are skipped,
// already set variables are never overridden.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("could not load env file %s: %w", p, err)
		}
	}
	return nil
}

// LoadYamlFile reads a YAML file and loads its leaves into the environment.
// Nested keys are joined with '_' and upper-cased:
//
//	auth:
//	  jwt_secret: abc   ->  AUTH_JWT_SECRET=abc
//
// Values of the form ${VAR:-default} are resolved against the environment.
// Variables that are already set are left untouched.
func LoadYamlFile(filepath string) error {
	if filepath == "" {
		return ErrNoFilePath
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return fmt.Errorf("could not open YAML file: %w", err)
	}

	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("could not parse YAML file: %w", err)
	}

	vars := make(map[string]string)
	flatten("", tree, vars)

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if os.Getenv(key) != "" {
			continue
		}
		if err := os.Setenv(key, expand(vars[key])); err != nil {
			return fmt.Errorf("could not set env var %s: %w", key, err)
		}
	}

	return nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := strings.ToUpper(k)
		if prefix != "" {
			key = prefix + "_" + key
		}

		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case []any:
			items := make([]string, 0, len(val))
			for _, item := range val {
				items = append(items, fmt.Sprint(item))
			}
			out[key] = strings.Join(items, ",")
		case nil:
			// "key:" without value does not represent a variable
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// expand resolves ${VAR:-default} and ${VAR} references.
func expand(value string) string {
	if !strings.HasPrefix(value, "${") || !strings.HasSuffix(value, "}") {
		return value
	}

	inner := value[2 : len(value)-1]
	name, def, _ := strings.Cut(inner, ":-")
	if env := os.Getenv(strings.TrimSpace(name)); env != "" {
		return env
	}
	return strings.TrimSpace(def)
}
