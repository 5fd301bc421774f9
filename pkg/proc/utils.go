package proc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/samber/lo"
)

// ParseSelfMap returns the executable, file-backed mappings of the calling
// process.
func ParseSelfMap() ([]*ProcMap, error) {
	return parseProcMapFile(HostProcPath("self", "maps"))
}

func parseProcMapFile(mapfile string) ([]*ProcMap, error) {
	f, err := os.Open(mapfile)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", mapfile, err)
	}
	defer f.Close()

	ret, err := parseProcMap(f)
	if err != nil {
		glog.Warningf("Failed to parse proc map %s: %v", mapfile, err)
	}
	return lo.Filter(ret, func(m *ProcMap, _ int) bool {
		return m.Executable() && !isAnonymous(m.Name)
	}), nil
}

// FindByInode returns the mappings of the file identified by dev and inode.
func FindByInode(maps []*ProcMap, dev, inode uint64) []*ProcMap {
	return lo.Filter(maps, func(m *ProcMap, _ int) bool {
		return m.Inode == inode && m.Dev() == dev
	})
}

func parseProcMap(r io.Reader) ([]*ProcMap, error) {
	var ret []*ProcMap
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		var m ProcMap
		n, _ := fmt.Sscanf(line, "%x-%x %4s %x %x:%x %d",
			&m.StartAddr,
			&m.EndAddr,
			&m.Perm,
			&m.FileOffset,
			&m.DevMajor,
			&m.DevMinor,
			&m.Inode)
		if n < 7 {
			glog.V(5).Infof("Skip malformed map line %q", line)
			continue
		}
		m.Name = pathname(line)
		ret = append(ret, &m)
	}
	if err := scanner.Err(); err != nil {
		return ret, fmt.Errorf("scan maps: %w", err)
	}
	return ret, nil
}

// pathname returns the sixth column of a maps line. It may contain spaces.
func pathname(line string) string {
	s := line
	for i := 0; i < 5; i++ {
		s = strings.TrimLeft(s, " ")
		j := strings.IndexByte(s, ' ')
		if j < 0 {
			return ""
		}
		s = s[j:]
	}
	return strings.TrimSpace(s)
}

func isAnonymous(mapname string) bool {
	return mapname == "" || strings.HasPrefix(mapname, "//anon") ||
		strings.HasPrefix(mapname, "/dev/zero") ||
		strings.HasPrefix(mapname, "/anon_hugepage") ||
		strings.HasPrefix(mapname, "[stack") ||
		strings.HasPrefix(mapname, "/SYSV") ||
		strings.HasPrefix(mapname, "[heap]") ||
		strings.HasPrefix(mapname, "[vsyscall]")
}
