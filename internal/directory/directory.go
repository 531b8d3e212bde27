// Package directory holds the static emergency service reference data
// consumed by the response composer. The directory is read-only after load.
package directory

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidDirectory is returned when a directory file cannot be activated.
var ErrInvalidDirectory = errors.New("invalid service directory")

// Service describes one emergency contact number.
type Service struct {
	Name         string `yaml:"name" json:"name"`
	Description  string `yaml:"description" json:"description"`
	Availability string `yaml:"availability" json:"availability"`
	Scope        string `yaml:"scope" json:"scope"`
}

// Directory maps a service code such as "119" to its metadata.
type Directory struct {
	services map[string]Service
}

type directoryFile struct {
	Services map[string]Service `yaml:"services"`
}

// Default returns the compiled-in Taiwan service directory.
func Default() *Directory {
	return &Directory{services: map[string]Service{
		"119": {
			Name:         "消防救護專線",
			Description:  "緊急醫療救護與消防報案",
			Availability: "24小時",
			Scope:        "救護車派遣、火警",
		},
		"112": {
			Name:         "行動電話緊急號碼",
			Description:  "手機無SIM卡或無訊號時可撥，轉接119與110",
			Availability: "24小時",
			Scope:        "行動電話緊急轉接",
		},
		"110": {
			Name:         "警察報案專線",
			Description:  "治安事件與交通事故報案",
			Availability: "24小時",
			Scope:        "警政",
		},
		"1925": {
			Name:         "安心專線",
			Description:  "心理危機協談與自殺防治",
			Availability: "24小時",
			Scope:        "心理支持",
		},
		"1966": {
			Name:         "長照服務專線",
			Description:  "長期照顧服務申請與諮詢",
			Availability: "服務時間內",
			Scope:        "長照諮詢",
		},
	}}
}

// Load reads a service directory from a YAML file.
func Load(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service directory: %w", err)
	}
	var f directoryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidDirectory, err)
	}
	if len(f.Services) == 0 {
		return nil, fmt.Errorf("%w: no services defined", ErrInvalidDirectory)
	}
	for code, svc := range f.Services {
		if code == "" {
			return nil, fmt.Errorf("%w: empty service code", ErrInvalidDirectory)
		}
		if svc.Name == "" {
			return nil, fmt.Errorf("%w: service %q missing name", ErrInvalidDirectory, code)
		}
	}
	return &Directory{services: f.Services}, nil
}

// Lookup returns the metadata for a service code.
func (d *Directory) Lookup(code string) (Service, bool) {
	svc, ok := d.services[code]
	return svc, ok
}

// Len returns the number of known services.
func (d *Directory) Len() int {
	return len(d.services)
}
