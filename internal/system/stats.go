package system

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats: снимок ресурсов хоста и текущего процесса
type Stats struct {
	CPUs        int
	TotalMemory uint64
	UsedPercent float64
	ProcessRSS  uint64
	OpenFiles   int32
	Goroutines  int
}

// CollectStats собирает то, что удаётся прочитать; недоступные поля остаются нулевыми
func CollectStats() (Stats, error) {
	s := Stats{Goroutines: runtime.NumGoroutine()}

	n, err := cpu.Counts(true)
	if err != nil {
		return s, fmt.Errorf("cpu: %w", err)
	}
	s.CPUs = n

	vm, err := mem.VirtualMemory()
	if err != nil {
		return s, fmt.Errorf("memory: %w", err)
	}
	s.TotalMemory = vm.Total
	s.UsedPercent = vm.UsedPercent

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return s, fmt.Errorf("process: %w", err)
	}
	if mi, err := p.MemoryInfo(); err == nil {
		s.ProcessRSS = mi.RSS
	}
	if fds, err := p.NumFDs(); err == nil {
		s.OpenFiles = fds
	}
	return s, nil
}

// Print выводит статистику в стиле консольного отчёта
func (s Stats) Print(w io.Writer) {
	fmt.Fprintln(w, "--- [STATS] ---")
	fmt.Fprintf(w, "[*] CPU: %d | RAM: %.1f GiB (занято %.1f%%)\n", s.CPUs, float64(s.TotalMemory)/(1<<30), s.UsedPercent)
	fmt.Fprintf(w, "[*] Процесс: RSS %.1f MiB | файлов %d | горутин %d\n", float64(s.ProcessRSS)/(1<<20), s.OpenFiles, s.Goroutines)
}
