package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
	kubeconfigFlagConstant                  = "--kubeconfig"
)

const (
	argoSubmitSubcommandConstant  = "submit"
	argoGetSubcommandConstant     = "get"
	helmUpgradeSubcommandConstant = "upgrade"
	gitRevParseSubcommandConstant = "rev-parse"
	gitRemoteSubcommandConstant   = "remote"
	gitRemoteGetURLConstant       = "get-url"
)

const (
	argoSubmitStartTemplateConstant                 = "Submitting workflow %s"
	argoSubmitSuccessTemplateConstant               = "Workflow %s finished waiting"
	argoSubmitFailureTemplateConstant               = "Failed to submit workflow %s (exit code %d%s)"
	argoSubmitExecutionFailureTemplateConstant      = "Unable to submit workflow %s: %s"
	argoGetStartTemplateConstant                    = "Reading status of workflow %s"
	argoGetSuccessTemplateConstant                  = "Read status of workflow %s"
	argoGetFailureTemplateConstant                  = "Failed to read status of workflow %s (exit code %d%s)"
	argoGetExecutionFailureTemplateConstant         = "Unable to read status of workflow %s: %s"
	helmUpgradeStartTemplateConstant                = "Upgrading release %s from chart %s"
	helmUpgradeSuccessTemplateConstant              = "Upgraded release %s from chart %s"
	helmUpgradeFailureTemplateConstant              = "Failed to upgrade release %s from chart %s (exit code %d%s)"
	helmUpgradeExecutionFailureTemplateConstant     = "Unable to upgrade release %s from chart %s: %s"
	gitRevisionStartTemplateConstant                = "Resolving %s in %s"
	gitRevisionSuccessTemplateConstant              = "%s in %s resolved to %s"
	gitRevisionFailureTemplateConstant              = "Failed to resolve %s in %s (exit code %d%s)"
	gitRevisionExecutionFailureTemplateConstant     = "Unable to resolve %s in %s: %s"
	gitRemoteLookupStartTemplateConstant            = "Checking %s remote for %s"
	gitRemoteLookupSuccessTemplateConstant          = "%s remote for %s points to %s"
	gitRemoteLookupFailureTemplateConstant          = "Failed to read %s remote for %s (exit code %d%s)"
	gitRemoteLookupExecutionFailureTemplateConstant = "Unable to read %s remote for %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandArgo:
		return formatter.describeArgoMessage(command, result, failure, stage)
	case CommandHelm:
		return formatter.describeHelmMessage(command, result, failure, stage)
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeArgoMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	positional := positionalArguments(command.Details.Arguments)
	if len(positional) < 2 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subject := positional[1]
	switch positional[0] {
	case argoSubmitSubcommandConstant:
		return formatter.selectTemplate(stage, result, failure,
			fmt.Sprintf(argoSubmitStartTemplateConstant, subject),
			fmt.Sprintf(argoSubmitSuccessTemplateConstant, subject),
			argoSubmitFailureTemplateConstant,
			argoSubmitExecutionFailureTemplateConstant,
			subject,
		)
	case argoGetSubcommandConstant:
		return formatter.selectTemplate(stage, result, failure,
			fmt.Sprintf(argoGetStartTemplateConstant, subject),
			fmt.Sprintf(argoGetSuccessTemplateConstant, subject),
			argoGetFailureTemplateConstant,
			argoGetExecutionFailureTemplateConstant,
			subject,
		)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeHelmMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	positional := positionalArguments(command.Details.Arguments)
	if len(positional) < 3 || positional[0] != helmUpgradeSubcommandConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	release := positional[1]
	chart := positional[2]
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(helmUpgradeStartTemplateConstant, release, chart)
	case messageStageSuccess:
		return fmt.Sprintf(helmUpgradeSuccessTemplateConstant, release, chart)
	case messageStageFailure:
		return fmt.Sprintf(helmUpgradeFailureTemplateConstant, release, chart, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(helmUpgradeExecutionFailureTemplateConstant, release, chart, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch {
	case len(arguments) >= 2 && arguments[0] == gitRevParseSubcommandConstant:
		reference := arguments[len(arguments)-1]
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitRevisionStartTemplateConstant, reference, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitRevisionSuccessTemplateConstant, reference, workingDirectory, formatter.ensureValue(strings.TrimSpace(result.StandardOutput)))
		case messageStageFailure:
			return fmt.Sprintf(gitRevisionFailureTemplateConstant, reference, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitRevisionExecutionFailureTemplateConstant, reference, workingDirectory, formatter.describeFailure(failure))
		}
	case len(arguments) >= 3 && arguments[0] == gitRemoteSubcommandConstant && arguments[1] == gitRemoteGetURLConstant:
		remoteName := arguments[2]
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitRemoteLookupStartTemplateConstant, remoteName, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitRemoteLookupSuccessTemplateConstant, remoteName, workingDirectory, formatter.ensureValue(strings.TrimSpace(result.StandardOutput)))
		case messageStageFailure:
			return fmt.Sprintf(gitRemoteLookupFailureTemplateConstant, remoteName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitRemoteLookupExecutionFailureTemplateConstant, remoteName, workingDirectory, formatter.describeFailure(failure))
		}
	}

	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) selectTemplate(stage messageStage, result ExecutionResult, failure error, startMessage string, successMessage string, failureTemplate string, executionFailureTemplate string, subject string) string {
	switch stage {
	case messageStageStart:
		return startMessage
	case messageStageSuccess:
		return successMessage
	case messageStageFailure:
		return fmt.Sprintf(failureTemplate, subject, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(executionFailureTemplate, subject, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return commandLabel
	}
	return commandLabel + fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmed := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmed) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	if len(value) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return value
}

// positionalArguments drops flags and the value following --kubeconfig.
func positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		trimmed := strings.TrimSpace(arguments[index])
		if trimmed == kubeconfigFlagConstant {
			index++
			continue
		}
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		positional = append(positional, trimmed)
	}
	return positional
}
