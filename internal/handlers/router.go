package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/schoolscan/omr-service/internal/services"
	"github.com/schoolscan/omr-service/internal/utils"
)

type HandlerManager struct {
	schoolHandler  *SchoolHandler
	studentHandler *StudentHandler
	examHandler    *ExamHandler
	scanHandler    *ScanHandler
	resultHandler  *ResultHandler
}

func NewHandlerManager(
	schoolService services.SchoolService,
	studentService services.StudentService,
	examService services.ExamService,
	scanService services.ScanService,
	resultService services.ResultService,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		schoolHandler:  NewSchoolHandler(schoolService, logger),
		studentHandler: NewStudentHandler(studentService, logger),
		examHandler:    NewExamHandler(examService, logger),
		scanHandler:    NewScanHandler(scanService, logger),
		resultHandler:  NewResultHandler(resultService, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		schools := v1.Group("/schools")
		{
			schools.POST("", hm.schoolHandler.CreateSchool)
			schools.GET("", hm.schoolHandler.ListSchools)
			schools.GET("/:school_id", hm.schoolHandler.GetSchool)
			schools.PUT("/:school_id", hm.schoolHandler.UpdateSchool)
			schools.DELETE("/:school_id", hm.schoolHandler.DeleteSchool)

			// Student management
			schools.POST("/:school_id/students", hm.studentHandler.CreateStudent)
			schools.GET("/:school_id/students", hm.studentHandler.ListStudents)
			schools.GET("/:school_id/students/:student_id", hm.studentHandler.GetStudent)
			schools.PUT("/:school_id/students/:student_id", hm.studentHandler.UpdateStudent)
			schools.DELETE("/:school_id/students/:student_id", hm.studentHandler.DeleteStudent)
			schools.GET("/:school_id/students/:student_id/results", hm.resultHandler.ListStudentResults)
			schools.GET("/:school_id/classrooms", hm.studentHandler.ListClassrooms)

			// Exam management
			schools.POST("/:school_id/exams", hm.examHandler.CreateExam)
			schools.GET("/:school_id/exams", hm.examHandler.ListExams)
			schools.GET("/:school_id/exams/:exam_id", hm.examHandler.GetExam)
			schools.PUT("/:school_id/exams/:exam_id", hm.examHandler.UpdateExam)
			schools.DELETE("/:school_id/exams/:exam_id", hm.examHandler.DeleteExam)

			// Version generation
			schools.POST("/:school_id/exams/:exam_id/versions", hm.examHandler.GenerateVersions)
			schools.GET("/:school_id/exams/:exam_id/versions", hm.examHandler.ListVersions)

			// Scanning and grading
			schools.POST("/:school_id/scans", hm.scanHandler.SubmitScan)
			schools.POST("/:school_id/exams/:exam_id/scans/detect", hm.scanHandler.DetectSheet)
			schools.GET("/:school_id/exams/:exam_id/stats", hm.scanHandler.GetExamStats)

			// Results
			schools.GET("/:school_id/results/:result_id", hm.resultHandler.GetResult)
			schools.GET("/:school_id/exams/:exam_id/results", hm.resultHandler.ListExamResults)
			schools.GET("/:school_id/exams/:exam_id/results/export", hm.resultHandler.ExportExamResults)
		}
	}
}
