package common

import (
	"context"
	"fmt"

	"resumelens/internal/errors"
)

// CreateInputFunc builds the operation input from the files' contents.
type CreateInputFunc[Input any] func(contents []string) (Input, error)

// LogDetailsFunc logs the start of an operation with its input.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// OperationFunc runs the operation itself.
type OperationFunc[Input, Output any] func(context.Context, Input) (Output, error)

// RunAnalysisCommand is the shared skeleton for file-based CLI commands:
// read and validate the input files, run the operation, emit the result.
func RunAnalysisCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	args []string,
	createInput CreateInputFunc[Input],
	operation OperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	fileProcessor := NewFileProcessor(logger)
	outputHandler := NewOutputHandler(logger)

	contents, err := fileProcessor.ValidateAndReadFiles(args...)
	if err != nil {
		return err
	}

	input, err := createInput(contents)
	if err != nil {
		return fmt.Errorf("failed to create input from file contents: %w", err)
	}

	logDetails(input, cmdConfig)

	result, err := operation(ctx, input)
	if err != nil {
		return err
	}

	return outputHandler.HandleOutput(result, cmdConfig)
}
