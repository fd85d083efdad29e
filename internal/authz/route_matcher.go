package authz

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed routes.yaml
var defaultRouteRules []byte

type RouteRule struct {
	Route      string `yaml:"route"`
	Permission string `yaml:"permission"`
}

type routeRulesFile struct {
	Rules []RouteRule `yaml:"rules"`
}

type wildcardRule struct {
	pattern    *regexp.Regexp
	permission string
}

// RouteMatcher сопоставляет метод и путь запроса с требуемым кодом привилегии.
type RouteMatcher struct {
	exact     map[string]string
	wildcards []wildcardRule
	codes     []string
}

// LoadRouteRules читает таблицу из файла, а при пустом пути берёт встроенную.
func LoadRouteRules(path string) (*RouteMatcher, error) {
	data := defaultRouteRules
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("не удалось прочитать таблицу маршрутов %s: %w", path, err)
		}
		data = raw
	}

	var file routeRulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("не удалось разобрать таблицу маршрутов: %w", err)
	}
	return NewRouteMatcher(file.Rules)
}

// NewRouteMatcher строит матчер. Порядок rules важен для шаблонов с "*".
func NewRouteMatcher(rules []RouteRule) (*RouteMatcher, error) {
	m := &RouteMatcher{exact: make(map[string]string, len(rules))}
	for _, rule := range rules {
		method, path, ok := strings.Cut(rule.Route, ":")
		if !ok || method == "" || rule.Permission == "" {
			return nil, fmt.Errorf("некорректное правило маршрута %q", rule.Route)
		}
		key := routeKey(method, path)
		if !slices.Contains(m.codes, rule.Permission) {
			m.codes = append(m.codes, rule.Permission)
		}

		if !strings.Contains(path, "*") {
			if _, dup := m.exact[key]; !dup {
				m.exact[key] = rule.Permission
			}
			continue
		}

		segments := strings.Split(key, "*")
		for i := range segments {
			segments[i] = regexp.QuoteMeta(segments[i])
		}
		pattern, err := regexp.Compile("^" + strings.Join(segments, "[^/]+") + "$")
		if err != nil {
			return nil, fmt.Errorf("правило %q: %w", rule.Route, err)
		}
		m.wildcards = append(m.wildcards, wildcardRule{pattern: pattern, permission: rule.Permission})
	}
	return m, nil
}

// Match возвращает код привилегии или "", если правило не найдено.
// Пустой код означает, что маршрут привилегии не требует.
func (m *RouteMatcher) Match(method, path string) string {
	key := routeKey(method, path)
	if permission, ok := m.exact[key]; ok {
		return permission
	}
	for _, rule := range m.wildcards {
		if rule.pattern.MatchString(key) {
			return rule.permission
		}
	}
	return ""
}

// Codes возвращает коды из таблицы без повторов, в порядке объявления.
func (m *RouteMatcher) Codes() []string {
	return slices.Clone(m.codes)
}

func routeKey(method, path string) string {
	return strings.ToUpper(method) + ":" + strings.Trim(path, "/")
}
