package confs

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"lab-server/entities"
)

type roomFile struct {
	Rooms []struct {
		Number int               `yaml:"number"`
		PCs    []entities.RoomPC `yaml:"pcs"`
	} `yaml:"rooms"`
}

// LoadRooms reads the room directory seed file. Rooms outside the configured
// set are rejected so the directory never holds unreachable PCs.
func LoadRooms(path string, valid []int) ([]entities.RoomPC, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rooms file: %w", err)
	}
	return ParseRooms(raw, valid)
}

func ParseRooms(raw []byte, valid []int) ([]entities.RoomPC, error) {
	var f roomFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse rooms file: %w", err)
	}

	allowed := make(map[int]bool, len(valid))
	for _, n := range valid {
		allowed[n] = true
	}

	var pcs []entities.RoomPC
	for _, room := range f.Rooms {
		if !allowed[room.Number] {
			return nil, fmt.Errorf("room %d is not in the configured room set", room.Number)
		}
		ids := make(map[uint]bool, len(room.PCs))
		for _, pc := range room.PCs {
			if pc.PcID == 0 {
				return nil, fmt.Errorf("room %d: pc %q has no id", room.Number, pc.Name)
			}
			if ids[pc.PcID] {
				return nil, fmt.Errorf("room %d: duplicate pc id %d", room.Number, pc.PcID)
			}
			ids[pc.PcID] = true
			pc.RoomNumber = room.Number
			pcs = append(pcs, pc)
		}
	}
	return pcs, nil
}
