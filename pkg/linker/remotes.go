package linker

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-ini/ini"
	"github.com/spf13/afero"
)

// defaultRemote is picked without prompting when present among several.
const defaultRemote = "origin"

// GitRemotes reads the remotes declared in the repository's git config file.
// The config itself is not interpreted beyond the remote sections.
func (r *Resolver) GitRemotes(rootPath string) (map[string]string, error) {
	data, err := afero.ReadFile(r.fs, filepath.Join(rootPath, r.vcsConfig))
	if err != nil {
		return nil, err
	}
	cfg, err := ini.Load(data)
	if err != nil {
		return nil, err
	}

	remotes := map[string]string{}
	for _, section := range cfg.Sections() {
		name := section.Name()
		if !strings.HasPrefix(name, `remote "`) || !strings.HasSuffix(name, `"`) {
			continue
		}
		remote := strings.TrimSuffix(strings.TrimPrefix(name, `remote "`), `"`)
		if url := section.Key("url").String(); url != "" {
			remotes[remote] = url
		}
	}
	return remotes, nil
}

// chooseRemote picks the remote to link against: the only one when there is
// exactly one, otherwise an interactive choice defaulting to origin.
func (r *Resolver) chooseRemote(remotes map[string]string) (string, error) {
	switch len(remotes) {
	case 0:
		return "", nil
	case 1:
		for name := range remotes {
			return name, nil
		}
	}
	names := make([]string, 0, len(remotes))
	for name := range remotes {
		names = append(names, name)
	}
	sort.Strings(names)

	def := names[0]
	if _, ok := remotes[defaultRemote]; ok {
		def = defaultRemote
	}
	if r.prompter == nil {
		return def, nil
	}
	return r.prompter.Select("Which Git remote should be linked?", names, def)
}
