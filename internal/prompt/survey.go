// Package prompt is the interactive operator input collaborator.
package prompt

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
)

type Survey struct{}

func New() *Survey {
	return &Survey{}
}

func (s *Survey) Ask(message, defaultValue string) (string, error) {
	var answer string
	input := &survey.Input{Message: message, Default: defaultValue}
	if err := survey.AskOne(input, &answer); err != nil {
		return "", fmt.Errorf("prompt interrupted: %w", err)
	}
	return answer, nil
}

func (s *Survey) Confirm(message string) (bool, error) {
	var ok bool
	confirm := &survey.Confirm{Message: message, Default: false}
	if err := survey.AskOne(confirm, &ok); err != nil {
		return false, fmt.Errorf("prompt interrupted: %w", err)
	}
	return ok, nil
}
