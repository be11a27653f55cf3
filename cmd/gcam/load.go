package main

import (
	"fmt"
	"os"

	"github.com/mastercactapus/gcam/gcode"
	"github.com/mastercactapus/gcam/job"
)

func loadJob(name string) (*job.Job, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	j, err := job.Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return j, nil
}

// runJob loads and runs a job file, returning the program and run summary.
func runJob(name string, density float64) (*gcode.Program, *job.Result, error) {
	j, err := loadJob(name)
	if err != nil {
		return nil, nil, err
	}
	var p gcode.Program
	res, err := j.Run(&p, density)
	if err != nil {
		return nil, nil, fmt.Errorf("run %s: %w", name, err)
	}
	return &p, res, nil
}
