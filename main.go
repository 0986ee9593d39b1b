package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/hitoshi/eventhive/internal/app"
)

func main() {
	// .envがあれば読み込む。本番環境では環境変数を直接渡すため、
	// ファイルが無いことはエラーにしない。
	_ = godotenv.Load()

	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "eventhive: %v\n", err)
		os.Exit(1)
	}
}
