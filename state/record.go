// Package state persists the form fields and template between runs and
// migrates records written by older versions.
package state

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wohhie/cover-letter-tool/binding"
)

// Key 是持久化记录的固定键名。
const Key = "coverLetterGenerator.state"

// CurrentVersion 是当前记录格式的版本号。
//
//	v0  扁平结构，employerName / companyName / companyAddress 分开保存
//	v1  扁平结构，合并为 employerCompanyName，地址拆成两行
//	v2  字段嵌套在 fields 下，编辑锁改名为 editUnlocked
const CurrentVersion = 2

// Fields 是表单上的可编辑字段。
type Fields struct {
	Date                string `json:"date" yaml:"date"`
	EmployerCompanyName string `json:"employerCompanyName" yaml:"employerCompanyName"`
	CompanyAddressLine1 string `json:"companyAddressLine1" yaml:"companyAddressLine1"`
	CompanyAddressLine2 string `json:"companyAddressLine2" yaml:"companyAddressLine2"`
	Position            string `json:"position" yaml:"position"`
}

// Record 是保存在 Key 下的完整状态。
type Record struct {
	Version      int    `json:"version"`
	Fields       Fields `json:"fields"`
	Template     string `json:"template"`
	EditUnlocked bool   `json:"editUnlocked"`
}

// Default 返回默认状态：日期为 today，模板为内置模板，其余为空。
func Default(today string) Record {
	return Record{
		Version:  CurrentVersion,
		Fields:   Fields{Date: today},
		Template: binding.DefaultTemplate,
	}
}

// wireRecord 覆盖所有历史版本出现过的字段名。
type wireRecord struct {
	Version      int     `json:"version"`
	Fields       *Fields `json:"fields"`
	Template     *string `json:"template"`
	EditUnlocked bool    `json:"editUnlocked"`

	Date                string `json:"date"`
	EmployerCompanyName string `json:"employerCompanyName"`
	CompanyAddressLine1 string `json:"companyAddressLine1"`
	CompanyAddressLine2 string `json:"companyAddressLine2"`
	Position            string `json:"position"`
	IsEditing           bool   `json:"isEditing"`

	EmployerName   string `json:"employerName"`
	CompanyName    string `json:"companyName"`
	CompanyAddress string `json:"companyAddress"`
}

// Migrate 解析任意版本的记录并逐级升级到 CurrentVersion。
// 缺失的 template 回落到内置模板；显式的空模板保留。
func Migrate(data []byte) (Record, error) {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return Record{}, fmt.Errorf("解析状态记录失败: %w", err)
	}
	if w.Version > CurrentVersion {
		return Record{}, fmt.Errorf("状态记录版本 %d 高于支持的版本 %d", w.Version, CurrentVersion)
	}
	return upgrade(w), nil
}

func upgrade(w wireRecord) Record {
	if w.Version == 0 && w.Fields == nil {
		w = migrateV0(w)
	}
	if w.Fields == nil {
		w.Fields = &Fields{
			Date:                w.Date,
			EmployerCompanyName: w.EmployerCompanyName,
			CompanyAddressLine1: w.CompanyAddressLine1,
			CompanyAddressLine2: w.CompanyAddressLine2,
			Position:            w.Position,
		}
		w.EditUnlocked = w.IsEditing
	}

	rec := Record{Version: CurrentVersion, Fields: *w.Fields, EditUnlocked: w.EditUnlocked}
	if w.Template != nil {
		rec.Template = *w.Template
	} else {
		rec.Template = binding.DefaultTemplate
	}
	return rec
}

func migrateV0(w wireRecord) wireRecord {
	if w.EmployerCompanyName == "" {
		w.EmployerCompanyName = firstNonEmpty(w.CompanyName, w.EmployerName)
	}
	if w.CompanyAddressLine1 == "" && w.CompanyAddressLine2 == "" && w.CompanyAddress != "" {
		w.CompanyAddressLine1, w.CompanyAddressLine2 = splitAddress(w.CompanyAddress)
	}
	w.Version = 1
	return w
}

// splitAddress 第一行作为 line1，其余行以 ", " 连接作为 line2。
func splitAddress(addr string) (string, string) {
	addr = strings.ReplaceAll(addr, "\r\n", "\n")
	var lines []string
	for _, l := range strings.Split(addr, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	switch len(lines) {
	case 0:
		return "", ""
	case 1:
		return lines[0], ""
	default:
		return lines[0], strings.Join(lines[1:], ", ")
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Encode 以当前版本序列化记录。
func Encode(rec Record) ([]byte, error) {
	rec.Version = CurrentVersion
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("序列化状态记录失败: %w", err)
	}
	return data, nil
}
