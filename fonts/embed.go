package fonts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// Default 是 canvas 后端未配置字体时使用的字体名。
const Default = "go-regular"

var builtin = map[string][]byte{
	"go-regular": goregular.TTF,
	"go-medium":  gomedium.TTF,
	"go-bold":    gobold.TTF,
	"go-italic":  goitalic.TTF,
	"go-mono":    gomono.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "embed:go-regular" 或直接 "go-regular"。
func Load(name string) ([]byte, error) {
	name = strings.ToLower(strings.TrimPrefix(name, "embed:"))
	if name == "" {
		name = Default
	}
	data, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("找不到内置字体 %s（可用：%s）", name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Names lists the embedded font names.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
