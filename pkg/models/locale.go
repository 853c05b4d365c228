package models

// Locale i18n 语言
type Locale struct {
	Code      string `json:"code" db:"code"`
	Name      string `json:"name" db:"name"`
	IsDefault bool   `json:"isDefault" db:"is_default"`
}
