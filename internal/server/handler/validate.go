package handler

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/palemoky/apple-clash/internal/apperrors"
	"github.com/palemoky/apple-clash/internal/types"
)

const maxNameLength = 16 // 显示名最大字符数

// normalizeName 去除首尾空白并校验显示名
func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return "", apperrors.ErrInvalidName
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return "", apperrors.ErrInvalidName
		}
	}
	return name, nil
}

// requestedName 请求里的显示名，为空时沿用当前名字。不修改客户端
func requestedName(client types.ClientInterface, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return client.GetName(), nil
	}
	return normalizeName(name)
}

// applyName 请求里带了名字时更新客户端显示名，为空时沿用当前名字
func applyName(client types.ClientInterface, name string) error {
	normalized, err := requestedName(client, name)
	if err != nil {
		return err
	}
	client.SetName(normalized)
	return nil
}
