package system

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// Расширения, по которым ищутся входные файлы
var (
	CompositionExts = []string{".yaml", ".yml"}
	ImageExts       = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tif", ".tiff", ".webp", ".pdf"}
	VideoExts       = []string{".mp4", ".mov", ".mkv", ".webm", ".ts"}
	AudioExts       = []string{".mp3", ".wav", ".m4a", ".ogg", ".aac", ".flac"}
)

// InitResourceLimits поднимает лимит открытых файлов: пробы медиа держат
// по дескриптору на каждый ресурс в работе.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	if rLimit.Cur >= 2048 {
		return
	}
	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	} else {
		fmt.Printf("[*] Системный лимит открытых файлов увеличен до %d\n", rLimit.Cur)
	}
}

// FindLatest возвращает самый свежий по времени изменения файл в dir
// с одним из расширений exts. Если path указывает на файл, ищется в его папке.
func FindLatest(path string, exts ...string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}

	searchDir := path
	if !fi.IsDir() {
		searchDir = filepath.Dir(path)
	}

	files, err := os.ReadDir(searchDir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !HasExt(f.Name(), exts...) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(searchDir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено файлов %s", searchDir, strings.Join(exts, ", "))
	}

	return latestFile, nil
}

// HasExt: регистронезависимая проверка расширения
func HasExt(name string, exts ...string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
