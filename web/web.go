// Package web はブラウザ用クライアントの静的ファイルを埋め込みます。
package web

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed public
var public embed.FS

// Assets は埋め込み済みの public ディレクトリを返します。dir が指定された場合はディスク上のディレクトリを使います。
func Assets(dir string) (fs.FS, error) {
	if dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			return nil, &fs.PathError{Op: "open", Path: dir, Err: fs.ErrInvalid}
		}
		return os.DirFS(dir), nil
	}
	return fs.Sub(public, "public")
}
