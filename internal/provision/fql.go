package provision

import (
	f "github.com/fauna/faunadb-go/v4/faunadb"
)

// ownerField is where the schema import stores the todo_owner relation.
var ownerField = f.Arr{"data", "user"}

type function struct {
	name string
	body f.Expr
}

// functionBodies replaces the placeholder bodies the schema import creates
// for each @resolver.
func functionBodies() []function {
	return []function{
		{name: "login", body: f.Query(f.Lambda("input",
			f.Select("secret", f.Login(
				f.MatchTerm(f.Index("unique_User_email"), f.Select("email", f.Var("input"))),
				f.Obj{"password": f.Select("password", f.Var("input"))},
			)),
		))},
		{name: "logout", body: f.Query(f.Lambda(f.Arr{}, f.Logout(false)))},
		{name: "me", body: f.Query(f.Lambda(f.Arr{}, f.Get(f.CurrentIdentity())))},
		{name: "user_create_todo", body: f.Query(f.Lambda("data",
			f.Create(f.Collection("Todo"), f.Obj{
				"data": f.Merge(f.Obj{"completed": false, "user": f.CurrentIdentity()}, f.Var("data")),
			}),
		))},
	}
}

// publicRole lets the public key log in and nothing else.
func publicRole() f.Obj {
	return f.Obj{
		"name": "public",
		"privileges": f.Arr{
			f.Obj{"resource": f.Function("login"), "actions": f.Obj{"call": true}},
			f.Obj{"resource": f.Index("unique_User_email"), "actions": f.Obj{"read": true}},
		},
	}
}

// userRole is held by every User document's session token. Todos are
// visible and writable only by their owner.
func userRole() f.Obj {
	isOwner := func(doc f.Expr) f.Expr {
		return f.Equals(f.CurrentIdentity(), f.Select(ownerField, doc))
	}
	return f.Obj{
		"name":       "user",
		"membership": f.Arr{f.Obj{"resource": f.Collection("User")}},
		"privileges": f.Arr{
			f.Obj{"resource": f.Collection("Todo"), "actions": f.Obj{
				"create": f.Query(f.Lambda("todo", isOwner(f.Var("todo")))),
				"delete": f.Query(f.Lambda("todo", isOwner(f.Get(f.Var("todo"))))),
				"read":   f.Query(f.Lambda("ref", isOwner(f.Get(f.Var("ref"))))),
				"write": f.Query(f.Lambda(f.Arr{"oldData", "newData"}, f.And(
					isOwner(f.Var("oldData")),
					f.Equals(f.Select(ownerField, f.Var("oldData")), f.Select(ownerField, f.Var("newData"))),
				))),
			}},
			f.Obj{"resource": f.Collection("User"), "actions": f.Obj{
				"read": f.Query(f.Lambda("ref", f.Equals(f.CurrentIdentity(), f.Var("ref")))),
			}},
			f.Obj{"resource": f.Index("todo_owner_by_user"), "actions": f.Obj{
				"read": f.Query(f.Lambda("terms", f.Equals(f.Var("terms"), f.Arr{f.CurrentIdentity()}))),
			}},
			f.Obj{"resource": f.Function("me"), "actions": f.Obj{"call": true}},
			f.Obj{"resource": f.Function("logout"), "actions": f.Obj{"call": true}},
			f.Obj{"resource": f.Function("user_create_todo"), "actions": f.Obj{"call": true}},
		},
	}
}
