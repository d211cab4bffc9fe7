package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (suite *APITestSuite) TestCreateUser() {
	w, env := suite.do(http.MethodPost, "/api/users", gin.H{"name": "Alice", "email": "a@x.com"})

	suite.Equal(http.StatusCreated, w.Code)
	suite.Equal("User created!", env.Message)

	var user userBody
	suite.Require().NoError(json.Unmarshal(env.Data, &user))
	suite.NotEmpty(user.ID)
	suite.Equal([]string{}, user.PendingTasks)
}

func (suite *APITestSuite) TestCreateUser_Validation() {
	w, env := suite.do(http.MethodPost, "/api/users", gin.H{"name": "Alice"})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Validation Error: name and email required", env.Message)

	suite.createUser("Alice", "a@x.com")
	w, env = suite.do(http.MethodPost, "/api/users", gin.H{"name": "Other", "email": "a@x.com"})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("Validation Error: email already exists", env.Message)
}

func (suite *APITestSuite) TestUpdateUser_PendingTasksAndRename() {
	alice := suite.createUser("Alice", "a@x.com")
	t1 := suite.createTask(gin.H{"name": "One", "deadline": "2024-01-01"})
	t2 := suite.createTask(gin.H{"name": "Two", "deadline": "2024-01-01"})

	w, env := suite.do(http.MethodPut, "/api/users/"+alice.ID, gin.H{
		"name":         "Alicia",
		"email":        "a@x.com",
		"pendingTasks": []string{t1.ID, t2.ID},
	})
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("User updated!", env.Message)

	for _, id := range []string{t1.ID, t2.ID} {
		task := suite.getTask(id)
		suite.Equal(alice.ID, task.AssignedUser)
		suite.Equal("Alicia", task.AssignedUserName)
	}
}

func (suite *APITestSuite) TestUpdateUser_MissingTaskIsAtomic() {
	alice := suite.createUser("Alice", "a@x.com")
	owned := suite.createTask(gin.H{"name": "Owned", "deadline": "2024-01-01", "assignedUser": alice.ID})

	w, _ := suite.do(http.MethodPut, "/api/users/"+alice.ID, gin.H{
		"name":         "Alice",
		"email":        "a@x.com",
		"pendingTasks": []string{"missing"},
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal([]string{owned.ID}, suite.getUser(alice.ID).PendingTasks)
	suite.Equal(alice.ID, suite.getTask(owned.ID).AssignedUser)
}

func (suite *APITestSuite) TestDeleteUser_Cascade() {
	alice := suite.createUser("Alice", "a@x.com")
	task := suite.createTask(gin.H{"name": "Owned", "deadline": "2024-01-01", "assignedUser": alice.ID})

	w, _ := suite.do(http.MethodDelete, "/api/users/"+alice.ID, nil)
	suite.Equal(http.StatusNoContent, w.Code)

	stored := suite.getTask(task.ID)
	suite.Equal("", stored.AssignedUser)
	suite.Equal("unassigned", stored.AssignedUserName)

	w, env := suite.do(http.MethodGet, "/api/users/"+alice.ID, nil)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("User not found", env.Message)
}

func (suite *APITestSuite) TestListUsers() {
	suite.createUser("Alice", "a@x.com")

	w, env := suite.do(http.MethodGet, "/api/users", nil)
	suite.Equal(http.StatusOK, w.Code)
	var users []userBody
	suite.Require().NoError(json.Unmarshal(env.Data, &users))
	suite.Len(users, 1)

	w, env = suite.do(http.MethodGet, "/api/users?count=true", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`1`, string(env.Data))
}
