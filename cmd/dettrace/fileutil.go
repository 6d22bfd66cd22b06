package main

import "os"

// prepareFiles opens the root tracee's stdin/stdout/stderr, leaving a nil
// slot for any name left empty (fileDescriptors maps those slots to the
// parent's own fd 0/1/2). Grounded on
// cmd/runprog/fileutil.go.
func prepareFiles(inputFile, outputFile, errorFile string) ([]*os.File, error) {
	files := make([]*os.File, 3)
	var err error
	if inputFile != "" {
		if files[0], err = os.OpenFile(inputFile, os.O_RDONLY, 0755); err != nil {
			closeFiles(files)
			return nil, err
		}
	}
	if outputFile != "" {
		if files[1], err = os.OpenFile(outputFile, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0755); err != nil {
			closeFiles(files)
			return nil, err
		}
	}
	if errorFile != "" {
		if files[2], err = os.OpenFile(errorFile, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0755); err != nil {
			closeFiles(files)
			return nil, err
		}
	}
	return files, nil
}

// closeFiles closes every non-nil file prepareFiles opened.
func closeFiles(files []*os.File) {
	for _, f := range files {
		if f != nil {
			f.Close()
		}
	}
}

// fileDescriptors converts the prepareFiles result into the fd list
// bootstrap.Runner.Files expects, falling back to the parent's own fd i
// for any slot prepareFiles left nil (matching cmd/run_program/main.go's
// fds construction).
func fileDescriptors(files []*os.File) []uintptr {
	fds := make([]uintptr, len(files))
	for i, f := range files {
		if f != nil {
			fds[i] = f.Fd()
		} else {
			fds[i] = uintptr(i)
		}
	}
	return fds
}
