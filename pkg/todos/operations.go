package todos

// The fixed operations the todo frontend issues against the gateway.
const (
	GetLoggedInQuery = `query GetLoggedIn {
  loggedIn
}`

	GetMyTodosQuery = `query GetMyTodos {
  me {
    _id
    _ts
    email
    todos {
      data {
        _id
        _ts
        title
        completed
      }
    }
  }
}`

	LoginMutation = `mutation Login($data: LoginInput!) {
  login(data: $data)
}`

	LogoutMutation = `mutation Logout {
  logout
}`

	UserCreateTodoMutation = `mutation UserCreateTodo($data: UserTodoInput!) {
  userCreateTodo(data: $data) {
    _id
    _ts
    title
    completed
  }
}`

	UpdateTodoMutation = `mutation UpdateTodo($id: ID!, $data: TodoInput!) {
  updateTodo(id: $id, data: $data) {
    _id
    _ts
    title
    completed
  }
}`

	DeleteTodoMutation = `mutation DeleteTodo($id: ID!) {
  deleteTodo(id: $id) {
    _id
  }
}`
)
