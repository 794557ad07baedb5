// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ConfigNotFoundId Id = iota + 1
	ConfigInvalidId
	InvalidConfigValueId
	HostUndetectedId
	MissingAgentSourceId
	EnvironmentExistsId
	EnvironmentCreateFailedId
	InstallFailedId
	UninstallFailedId
	DownloadFailedId
	ChecksumMismatchId
	ValidationFailedId
	DestinationExistsId
	ArchiveFailedId

	lastId = ArchiveFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // project docs for this failure
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render turns the issue into terminal output using the glamour style at stylePath
// ("dark", "light", "notty", or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	configNotFoundIssue = &Issue{
		id: ConfigNotFoundId,
		mdMsg: `
# Config file not found

agentpack reads its package lists from a YAML file, ` + "`config.yaml`" + ` in the
current directory unless ` + "`-c`" + ` says otherwise.

## Things you can try
- Point at the right file:
~~~
$ agentpack -c /path/to/config.yaml
~~~
- Check that the file is readable by the current user.`,
	}

	configInvalidIssue = &Issue{
		id: ConfigInvalidId,
		mdMsg: `
# Config file could not be parsed

The file is not valid YAML or contains a key with the wrong type.
The error above names the offending path, for example ` + "`core_plugins.cloudify-script-plugin`" + `.

## A minimal config
~~~yaml
distribution: ubuntu
release: jammy
agent_version: 7.0.0
core_plugins:
  cloudify-script-plugin: git+https://github.com/cloudify-cosmo/cloudify-script-plugin@master
~~~`,
	}

	invalidConfigValueIssue = &Issue{
		id: InvalidConfigValueId,
		mdMsg: `
# Invalid configuration value

The config parsed, but a value is not allowed:

- mandatory core packages (` + "`cloudify-rest-client`, `cloudify-plugins-common`" + `) cannot be excluded
- only known core packages and core plugins may be listed under ` + "`core_packages`" + ` and ` + "`core_plugins`" + `

Move custom packages to ` + "`additional_packages`" + ` or ` + "`additional_plugins`" + `.`,
	}

	hostUndetectedIssue = &Issue{
		id: HostUndetectedId,
		mdMsg: `
# Could not detect the host distribution

Neither ` + "`distribution`/`release`" + ` were set in the config nor could they be
read from ` + "`/etc/os-release`" + `.

## Things you can try
- Set both keys explicitly in the config file.`,
	}

	missingAgentSourceIssue = &Issue{
		id: MissingAgentSourceId,
		mdMsg: `
# No agent source

Set one of the following in the config file:

- ` + "`agent_package_source`" + `: a pip-installable URL or path
- ` + "`agent_version`" + `: a branch or tag of the agent repository

The ` + "`VERSION`" + ` environment variable is used when neither is set.`,
	}

	environmentExistsIssue = &Issue{
		id: EnvironmentExistsId,
		mdMsg: `
# Environment already exists

The target virtualenv directory is already present.

## Things you can try
- Reuse it:
~~~
$ agentpack --force
~~~
- Or remove the directory and run again.`,
	}

	environmentCreateFailedIssue = &Issue{
		id: EnvironmentCreateFailedId,
		mdMsg: `
# Could not create the virtualenv

agentpack runs ` + "`python -m virtualenv <dir>`" + `.

## Things you can try
- Install virtualenv for the interpreter in use:
~~~
$ python3 -m pip install virtualenv
~~~
- Select another interpreter with ` + "`python_path`" + ` in the config file.`,
	}

	installFailedIssue = &Issue{
		id: InstallFailedId,
		mdMsg: `
# Package installation failed

pip returned a non-zero exit status. Its output is shown in verbose mode (` + "`-v`" + `).

## Things you can try
- Check network access to the package source.
- Pass extra pip options, for example a private index:
~~~
$ agentpack --pip-arg=--index-url=https://pypi.example.com/simple
~~~`,
	}

	uninstallFailedIssue = &Issue{
		id: UninstallFailedId,
		mdMsg: `
# Package removal failed

An excluded package was found in the environment but pip could not remove it.
Run with ` + "`-v`" + ` to see pip's output.`,
	}

	downloadFailedIssue = &Issue{
		id: DownloadFailedId,
		mdMsg: `
# Download failed

A remote ` + "`requirements_file`" + ` could not be fetched. Check the URL and the
proxy settings (` + "`HTTPS_PROXY`" + `) of this host.`,
	}

	checksumMismatchIssue = &Issue{
		id: ChecksumMismatchId,
		mdMsg: `
# Checksum mismatch

The downloaded requirements file does not match ` + "`requirements_sha256`" + `.
The file may have changed upstream. Update the checksum only if the new contents are trusted.`,
	}

	validationFailedIssue = &Issue{
		id: ValidationFailedId,
		mdMsg: `
# Validation failed

Some requested packages are missing from the environment after installation.
This usually means a package name differs from its distribution name.

## Things you can try
- Inspect the environment, which is kept after a failure:
~~~
$ cloudify/env/bin/pip freeze
~~~
- Skip validation with ` + "`--no-validation`" + ` if the names are known to differ.`,
	}

	destinationExistsIssue = &Issue{
		id: DestinationExistsId,
		mdMsg: `
# Archive already exists

The output archive is already present. Remove it, choose another ` + "`output_path`" + `,
or overwrite it with ` + "`--force`" + `.`,
	}

	archiveFailedIssue = &Issue{
		id: ArchiveFailedId,
		mdMsg: `
# Archive creation failed

The environment could not be written to the tar.gz file. Check free disk space
and write permission on the output directory.`,
	}

	issues = map[Id]*Issue{
		configNotFoundIssue.Id():          configNotFoundIssue,
		configInvalidIssue.Id():           configInvalidIssue,
		invalidConfigValueIssue.Id():      invalidConfigValueIssue,
		hostUndetectedIssue.Id():          hostUndetectedIssue,
		missingAgentSourceIssue.Id():      missingAgentSourceIssue,
		environmentExistsIssue.Id():       environmentExistsIssue,
		environmentCreateFailedIssue.Id(): environmentCreateFailedIssue,
		installFailedIssue.Id():           installFailedIssue,
		uninstallFailedIssue.Id():         uninstallFailedIssue,
		downloadFailedIssue.Id():          downloadFailedIssue,
		checksumMismatchIssue.Id():        checksumMismatchIssue,
		validationFailedIssue.Id():        validationFailedIssue,
		destinationExistsIssue.Id():       destinationExistsIssue,
		archiveFailedIssue.Id():           archiveFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for id := Id(1); id <= lastId; id++ {
		if i, ok := issues[id]; ok {
			out = append(out, i)
		}
	}
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
