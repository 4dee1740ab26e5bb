//go:build !linux

package stats

// Non-Linux platforms report zeros; the CLI renders them as "n/a".

func readLoad1() float64 { return 0 }

func readMemory() (total, available uint64) { return 0, 0 }

func diskUsage(path string) (total, free uint64) { return 0, 0 }
