package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/guard/cmd/guard/commands"
	"go.trai.ch/guard/internal/app"
	"go.trai.ch/guard/internal/build"
	"go.trai.ch/guard/internal/core/domain"
	"go.trai.ch/guard/internal/engine/policy"
	"gopkg.in/yaml.v3"
)

type mockApp struct {
	installFunc  func(ctx context.Context, managerName string, args []string) error
	checkFunc    func(ctx context.Context, lockfile string, opts app.CheckOptions) error
	policiesFunc func(managerName, root string) ([]policy.StagePolicy, error)
}

func (m *mockApp) Install(ctx context.Context, managerName string, args []string) error {
	if m.installFunc != nil {
		return m.installFunc(ctx, managerName, args)
	}
	return nil
}

func (m *mockApp) Check(ctx context.Context, lockfile string, opts app.CheckOptions) error {
	if m.checkFunc != nil {
		return m.checkFunc(ctx, lockfile, opts)
	}
	return nil
}

func (m *mockApp) Policies(managerName, root string) ([]policy.StagePolicy, error) {
	if m.policiesFunc != nil {
		return m.policiesFunc(managerName, root)
	}
	return nil, nil
}

func TestCommands_Manager(t *testing.T) {
	t.Run("passes raw arguments including flags", func(t *testing.T) {
		var gotManager string
		var gotArgs []string

		mock := &mockApp{
			installFunc: func(_ context.Context, managerName string, args []string) error {
				gotManager = managerName
				gotArgs = args
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"npm", "--force", "install", "-D", "jest", "--help"})

		err := cli.Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "npm", gotManager)
		assert.Equal(t, []string{"--force", "install", "-D", "jest", "--help"}, gotArgs)
	})

	t.Run("registers every manager", func(t *testing.T) {
		var seen []string
		mock := &mockApp{
			installFunc: func(_ context.Context, managerName string, _ []string) error {
				seen = append(seen, managerName)
				return nil
			},
		}

		for _, m := range domain.Managers() {
			cli := commands.New(mock)
			cli.SetArgs([]string{m.Name})
			require.NoError(t, cli.Execute(context.Background()))
		}
		assert.Equal(t, []string{"npm", "yarn", "pnpm"}, seen)
	})

	t.Run("returns install error", func(t *testing.T) {
		mock := &mockApp{
			installFunc: func(context.Context, string, []string) error {
				return errors.New("simulated error")
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"pnpm", "add", "x"})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_Check(t *testing.T) {
	var gotPath string
	var gotOpts app.CheckOptions
	mock := &mockApp{
		checkFunc: func(_ context.Context, lockfile string, opts app.CheckOptions) error {
			gotPath = lockfile
			gotOpts = opts
			return nil
		},
	}

	cli := commands.New(mock)
	cli.SetArgs([]string{"check", "deps.lock", "--format", "yarn"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, "deps.lock", gotPath)
	assert.Equal(t, "yarn", gotOpts.Format)
}

func TestCommands_CheckRequiresLockfile(t *testing.T) {
	cli := commands.New(&mockApp{})
	cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
	cli.SetArgs([]string{"check"})

	require.Error(t, cli.Execute(context.Background()))
}

func TestCommands_Policy(t *testing.T) {
	mock := &mockApp{
		policiesFunc: func(managerName, root string) ([]policy.StagePolicy, error) {
			assert.Equal(t, "npm", managerName)
			assert.Equal(t, "/proj", root)
			return []policy.StagePolicy{{
				Stage: "build",
				Policy: domain.SandboxPolicy{
					CanReadAll:    true,
					WritablePaths: []string{"/proj", "/tmp"},
					AllCommands:   true,
				},
			}}, nil
		},
	}

	cli := commands.New(mock)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"policy", "npm", "--root", "/proj"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, buf.String(), "- stage: build")
	assert.Contains(t, buf.String(), "networkAllowed: false")
	assert.NotContains(t, buf.String(), "runnableCommands")

	var decoded []policy.StagePolicy
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, []string{"/proj", "/tmp"}, decoded[0].Policy.WritablePaths)
	assert.True(t, decoded[0].Policy.AllCommands)
}

func TestCommands_Version(t *testing.T) {
	mock := &mockApp{}
	cli := commands.New(mock)

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version"})

	err := cli.Execute(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), build.Version)
}
