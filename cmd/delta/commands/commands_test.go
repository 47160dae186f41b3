package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/delta/cmd/delta/commands"
	"go.trai.ch/delta/internal/app"
	"go.trai.ch/delta/internal/build"
	"go.trai.ch/delta/internal/core/domain"
)

type mockApp struct {
	checkFunc func(ctx context.Context, manifestPath string, opts app.CheckOptions) ([]app.Report, error)
	setsFunc  func(manifestPath string) ([]string, error)
}

func (m *mockApp) Check(ctx context.Context, manifestPath string, opts app.CheckOptions) ([]app.Report, error) {
	if m.checkFunc != nil {
		return m.checkFunc(ctx, manifestPath, opts)
	}
	return nil, nil
}

func (m *mockApp) Sets(manifestPath string) ([]string, error) {
	if m.setsFunc != nil {
		return m.setsFunc(manifestPath)
	}
	return nil, nil
}

func TestCommands_Check(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var capturedPath string
		var capturedOpts app.CheckOptions

		mock := &mockApp{
			checkFunc: func(_ context.Context, manifestPath string, opts app.CheckOptions) ([]app.Report, error) {
				capturedPath = manifestPath
				capturedOpts = opts
				return []app.Report{
					{Set: "app", Result: domain.SourceMatch{SourceVersion: 3}},
					{Set: "lib", Result: domain.NoMatch{}},
				}, nil
			},
		}

		cli := commands.New(mock)
		out := new(bytes.Buffer)
		cli.SetOutput(out, new(bytes.Buffer))
		cli.SetArgs([]string{"check", "depot.yaml", "--at", "12", "--set", "app", "-s", "lib"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, "depot.yaml", capturedPath)
		assert.Equal(t, domain.Version(12), capturedOpts.Version)
		assert.Equal(t, []string{"app", "lib"}, capturedOpts.Sets)
		assert.Equal(t, "app\tSourceMatch(3)\nlib\tNoMatch\n", out.String())
	})

	t.Run("renders reports before returning a failed check", func(t *testing.T) {
		failure := errors.New("source offline")
		mock := &mockApp{
			checkFunc: func(_ context.Context, _ string, _ app.CheckOptions) ([]app.Report, error) {
				return []app.Report{{Set: "app", Err: failure}}, errors.Join(domain.ErrCheckFailed, failure)
			},
		}

		cli := commands.New(mock)
		out := new(bytes.Buffer)
		cli.SetOutput(out, new(bytes.Buffer))
		cli.SetArgs([]string{"check", "depot.yaml", "--at", "4"})

		err := cli.Execute(context.Background())
		require.ErrorIs(t, err, domain.ErrCheckFailed)
		assert.Equal(t, "app\terror: source offline\n", out.String())
	})

	t.Run("rejects an invalid version", func(t *testing.T) {
		mock := &mockApp{
			checkFunc: func(_ context.Context, _ string, _ app.CheckOptions) ([]app.Report, error) {
				panic("should not be called")
			},
		}

		cli := commands.New(mock)
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"check", "depot.yaml", "--at", "twelve"})

		err := cli.Execute(context.Background())
		require.ErrorIs(t, err, domain.ErrInvalidVersion)
	})

	t.Run("requires the candidate version", func(t *testing.T) {
		cli := commands.New(&mockApp{})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"check", "depot.yaml"})

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), `required flag(s) "at" not set`)
	})

	t.Run("requires a manifest", func(t *testing.T) {
		cli := commands.New(&mockApp{})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"check", "--at", "1"})

		require.Error(t, cli.Execute(context.Background()))
	})
}

func TestCommands_Sets(t *testing.T) {
	t.Run("lists set names", func(t *testing.T) {
		mock := &mockApp{
			setsFunc: func(manifestPath string) ([]string, error) {
				assert.Equal(t, "depot.yaml", manifestPath)
				return []string{"app", "base"}, nil
			},
		}

		cli := commands.New(mock)
		out := new(bytes.Buffer)
		cli.SetOutput(out, new(bytes.Buffer))
		cli.SetArgs([]string{"sets", "depot.yaml"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, "app\nbase\n", out.String())
	})

	t.Run("returns load errors", func(t *testing.T) {
		mock := &mockApp{
			setsFunc: func(string) ([]string, error) {
				return nil, errors.New("simulated error")
			},
		}

		cli := commands.New(mock)
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"sets", "depot.yaml"})

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_Version(t *testing.T) {
	cli := commands.New(&mockApp{})
	out := new(bytes.Buffer)
	cli.SetOutput(out, out)
	cli.SetArgs([]string{"version"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, "delta version "+build.Version+" (commit: "+build.Commit+", date: "+build.Date+")\n", out.String())
}

func TestCommands_VersionFlag(t *testing.T) {
	cli := commands.New(&mockApp{})
	out := new(bytes.Buffer)
	cli.SetOutput(out, out)
	cli.SetArgs([]string{"--version"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, "delta version "+build.Version+" (commit: "+build.Commit+", date: "+build.Date+")\n", out.String())
}
