package graph

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/Tanmoy095/authgate/graph/schema"
)

func TestComposeSnapshot(t *testing.T) {
	s, err := Compose(schema.RemoteSnapshot(), FilteredRootFields)
	require.NoError(t, err)

	for _, name := range []string{"createTodo", "createUser", "deleteUser"} {
		require.Nil(t, s.Mutation.Fields.ForName(name), name)
	}
	require.Nil(t, s.Query.Fields.ForName("findUserByID"))

	for _, name := range []string{"userCreateTodo", "updateTodo", "deleteTodo", "updateUser"} {
		require.NotNil(t, s.Mutation.Fields.ForName(name), name)
	}
	require.NotNil(t, s.Query.Fields.ForName("findTodoByID"))
	require.NotNil(t, s.Query.Fields.ForName("me"))

	login := s.Mutation.Fields.ForName("login")
	require.NotNil(t, login)
	require.Equal(t, "Boolean!", login.Type.String())
	require.Equal(t, "LoginInput", login.Arguments.ForName("data").Type.String())

	loggedIn := s.Query.Fields.ForName("loggedIn")
	require.NotNil(t, loggedIn)
	require.Equal(t, "Boolean!", loggedIn.Type.String())

	logouts := 0
	for _, f := range s.Mutation.Fields {
		if f.Name == "logout" {
			logouts++
		}
	}
	require.Equal(t, 1, logouts)

	input := s.Types["LoginInput"]
	require.Equal(t, ast.InputObject, input.Kind)
	require.False(t, input.Fields.ForName("email").Type.NonNull)
	require.False(t, input.Fields.ForName("password").Type.NonNull)
}

func TestComposeWithoutFilter(t *testing.T) {
	s, err := Compose(schema.RemoteSnapshot(), nil)
	require.NoError(t, err)
	require.NotNil(t, s.Mutation.Fields.ForName("createUser"))
	require.NotNil(t, s.Query.Fields.ForName("findUserByID"))
}

func TestComposeAddsMissingRoots(t *testing.T) {
	remote := &ast.Source{Name: "remote.graphql", Input: `type Query { me: String }`}

	s, err := Compose(remote, FilteredRootFields)
	require.NoError(t, err)
	require.NotNil(t, s.Query.Fields.ForName("me"))
	require.NotNil(t, s.Query.Fields.ForName("loggedIn"))
	require.NotNil(t, s.Mutation)
	require.NotNil(t, s.Mutation.Fields.ForName("login"))
	require.NotNil(t, s.Mutation.Fields.ForName("logout"))
}

func TestComposeInvalidRemote(t *testing.T) {
	_, err := Compose(&ast.Source{Name: "remote.graphql", Input: `type Query {`}, FilteredRootFields)
	require.Error(t, err)

	_, err = Compose(&ast.Source{Name: "remote.graphql", Input: `type Query { me: Missing }`}, FilteredRootFields)
	require.Error(t, err)
}
