package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/lineup/internal/domain/model"
)

// readCSV returns every record of the file at path. A missing file yields no
// records and no error.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	var out [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		out = append(out, rec)
	}
}

// writeCSV replaces the file at path atomically: records go to a temporary
// file in the same directory which is then renamed over the target.
func writeCSV(path string, records [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(records); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// decodeRoster parses roster rows. Rows are "id,name,rating"; legacy
// "name,rating" rows get ids after the highest id seen, in file order.
// Ids must be unique and names must pass the same checks as Add.
func decodeRoster(records [][]string) ([]model.Participant, error) {
	out := make([]model.Participant, 0, len(records))
	var legacy []int // positions in out still waiting for an id
	ids := make(map[int]int, len(records))
	maxID := 0
	for i, rec := range records {
		var p model.Participant
		var err error
		switch len(rec) {
		case 3:
			if p.ID, err = strconv.Atoi(strings.TrimSpace(rec[0])); err != nil || p.ID < 1 {
				return nil, fmt.Errorf("%w: line %d: bad id %q", ErrInvalidRecord, i+1, rec[0])
			}
			if line, dup := ids[p.ID]; dup {
				return nil, fmt.Errorf("%w: line %d: id %d already used on line %d", ErrDuplicate, i+1, p.ID, line)
			}
			ids[p.ID] = i + 1
			p.Name = strings.TrimSpace(rec[1])
			p.Rating, err = strconv.Atoi(strings.TrimSpace(rec[2]))
		case 2:
			p.Name = strings.TrimSpace(rec[0])
			p.Rating, err = strconv.Atoi(strings.TrimSpace(rec[1]))
			legacy = append(legacy, len(out))
		default:
			return nil, fmt.Errorf("%w: line %d: expected 2 or 3 fields, got %d", ErrInvalidRecord, i+1, len(rec))
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad rating: %w", ErrInvalidRecord, i+1, err)
		}
		if p.Name, err = validateName(p.Name); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidRecord, i+1, err)
		}
		maxID = max(maxID, p.ID)
		out = append(out, p)
	}
	for _, pos := range legacy {
		maxID++
		out[pos].ID = maxID
	}
	return out, nil
}

func encodeRoster(players []model.Participant) [][]string {
	out := make([][]string, len(players))
	for i, p := range players {
		out[i] = []string{strconv.Itoa(p.ID), p.Name, strconv.Itoa(p.Rating)}
	}
	return out
}

// decodeSynergy parses "lo,hi,value" rows. Later rows for the same pair win.
func decodeSynergy(records [][]string) (model.SynergyTable, error) {
	out := make(model.SynergyTable, len(records))
	for i, rec := range records {
		if len(rec) != 3 {
			return nil, fmt.Errorf("%w: line %d: expected 3 fields, got %d", ErrInvalidRecord, i+1, len(rec))
		}
		var nums [3]int
		for j, field := range rec {
			n, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidRecord, i+1, err)
			}
			nums[j] = n
		}
		if nums[0] == nums[1] {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidRecord, i+1, ErrInvalidPair)
		}
		key := model.NewPairKey(nums[0], nums[1])
		if nums[2] == 0 {
			delete(out, key)
			continue
		}
		out[key] = nums[2]
	}
	return out, nil
}

func encodeSynergy(table model.SynergyTable) [][]string {
	records := table.Records()
	out := make([][]string, len(records))
	for i, r := range records {
		out[i] = []string{strconv.Itoa(r.Pair.Lo), strconv.Itoa(r.Pair.Hi), strconv.Itoa(r.Value)}
	}
	return out
}
