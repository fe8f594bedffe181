package main

import (
	"log"
	"os"

	"github.com/ivlev/videocanvas/internal/cli"
	"github.com/ivlev/videocanvas/internal/composition"
	"github.com/ivlev/videocanvas/internal/system"
)

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	// Создаем нужные директории, если их нет
	os.MkdirAll(composition.DefaultDir, 0755)

	if err := cli.NewRootCommand().Execute(); err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}
}
