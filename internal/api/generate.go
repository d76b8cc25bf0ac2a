// Package api は全ハンドラーで共有する HTTP スキーマを保持します。
package api

//go:generate go tool oapi-codegen -config oapi-codegen.yaml openapi.yaml
